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

func setupChannelGroupRepositoryTest(t *testing.T) (*GormChannelGroupRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:channel_group_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.ChannelGroup{}, &models.ChannelGroupMember{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewChannelGroupRepository(db), db
}

func TestAdvanceCursorWraps(t *testing.T) {
	repo, db := setupChannelGroupRepositoryTest(t)

	group := models.ChannelGroup{Name: "g1", Strategy: constants.GroupStrategyRoundRobin, IsActive: true}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}

	for i, expected := range []int{1, 0, 1, 0} {
		if err := repo.AdvanceCursor(group.ID, 2); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
		got, err := repo.GetByID(group.ID)
		if err != nil {
			t.Fatalf("get group failed: %v", err)
		}
		if got.Cursor != expected {
			t.Fatalf("step %d: expected cursor %d, got %d", i, expected, got.Cursor)
		}
	}
}

func TestReplaceMembersKeepsOrder(t *testing.T) {
	repo, db := setupChannelGroupRepositoryTest(t)

	group := models.ChannelGroup{Name: "g1", Strategy: constants.GroupStrategyFirstAvailable, IsActive: true}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}

	members := []models.ChannelGroupMember{
		{ChannelID: 3, Weight: 2, SortOrder: 1},
		{ChannelID: 7, Weight: 1, SortOrder: 0},
	}
	if err := repo.ReplaceMembers(group.ID, members); err != nil {
		t.Fatalf("replace members failed: %v", err)
	}

	got, err := repo.GetByID(group.ID)
	if err != nil {
		t.Fatalf("get group failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(got.Members))
	}
	if got.Members[0].ChannelID != 7 || got.Members[1].ChannelID != 3 {
		t.Fatalf("members not ordered by sort_order: %+v", got.Members)
	}

	// 再次替换为单成员
	if err := repo.ReplaceMembers(group.ID, []models.ChannelGroupMember{{ChannelID: 9}}); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}
	got, _ = repo.GetByID(group.ID)
	if len(got.Members) != 1 || got.Members[0].ChannelID != 9 {
		t.Fatalf("unexpected members after replace: %+v", got.Members)
	}
}

func TestChannelGroupGetByIDNotFound(t *testing.T) {
	repo, _ := setupChannelGroupRepositoryTest(t)

	got, err := repo.GetByID(12345)
	if err != nil {
		t.Fatalf("get group failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing group, got %+v", got)
	}
}
