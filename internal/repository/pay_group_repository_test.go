package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/Skynami/LunFirPay/internal/constants"
	"github.com/Skynami/LunFirPay/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPayGroupRepositoryTest(t *testing.T) (*GormPayGroupRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:pay_group_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PayGroup{}, &models.PayGroupRule{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPayGroupRepository(db), db
}

func TestAdvanceRuleCursorWraps(t *testing.T) {
	repo, db := setupPayGroupRepositoryTest(t)

	group := models.PayGroup{Name: "default"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	rule := models.PayGroupRule{
		GroupID: group.ID,
		PayType: constants.PayTypeAlipay,
		Mode:    constants.RuleModeRoundRobin,
		Cursor:  0,
	}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("create rule failed: %v", err)
	}

	for i, expected := range []int{1, 2, 0, 1} {
		if err := repo.AdvanceRuleCursor(rule.ID, 3); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
		got, err := repo.GetRule(group.ID, constants.PayTypeAlipay)
		if err != nil {
			t.Fatalf("get rule failed: %v", err)
		}
		if got.Cursor != expected {
			t.Fatalf("step %d: expected cursor %d, got %d", i, expected, got.Cursor)
		}
	}
}

func TestAdvanceRuleCursorZeroModuloIsNoop(t *testing.T) {
	repo, db := setupPayGroupRepositoryTest(t)

	group := models.PayGroup{Name: "default"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	rule := models.PayGroupRule{GroupID: group.ID, PayType: constants.PayTypeWxpay, Mode: constants.RuleModeRoundRobin, Cursor: 5}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("create rule failed: %v", err)
	}

	if err := repo.AdvanceRuleCursor(rule.ID, 0); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	got, _ := repo.GetRule(group.ID, constants.PayTypeWxpay)
	if got.Cursor != 5 {
		t.Fatalf("expected cursor unchanged, got %d", got.Cursor)
	}
}

func TestSetDefaultKeepsSingleDefault(t *testing.T) {
	repo, db := setupPayGroupRepositoryTest(t)

	a := models.PayGroup{Name: "a", IsDefault: true}
	b := models.PayGroup{Name: "b"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create group a failed: %v", err)
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create group b failed: %v", err)
	}

	if err := repo.SetDefault(b.ID); err != nil {
		t.Fatalf("set default failed: %v", err)
	}

	got, err := repo.GetDefault()
	if err != nil {
		t.Fatalf("get default failed: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Fatalf("expected group b to be default, got %+v", got)
	}

	var defaults int64
	if err := db.Model(&models.PayGroup{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
		t.Fatalf("count defaults failed: %v", err)
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default group, got %d", defaults)
	}
}

func TestGetRuleNotFoundReturnsNil(t *testing.T) {
	repo, db := setupPayGroupRepositoryTest(t)

	group := models.PayGroup{Name: "default"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}

	rule, err := repo.GetRule(group.ID, constants.PayTypeBank)
	if err != nil {
		t.Fatalf("get rule failed: %v", err)
	}
	if rule != nil {
		t.Fatalf("expected nil rule, got %+v", rule)
	}
}

func TestDeleteRemovesRules(t *testing.T) {
	repo, db := setupPayGroupRepositoryTest(t)

	group := models.PayGroup{Name: "default"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	rule := models.PayGroupRule{GroupID: group.ID, PayType: constants.PayTypeAlipay, Mode: constants.RuleModeRandom}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("create rule failed: %v", err)
	}

	if err := repo.Delete(group.ID); err != nil {
		t.Fatalf("delete group failed: %v", err)
	}

	var rules int64
	if err := db.Model(&models.PayGroupRule{}).Where("group_id = ?", group.ID).Count(&rules).Error; err != nil {
		t.Fatalf("count rules failed: %v", err)
	}
	if rules != 0 {
		t.Fatalf("expected rules removed with group, got %d", rules)
	}
}
