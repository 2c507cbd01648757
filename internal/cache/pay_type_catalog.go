package cache

import (
	"context"
	"time"

	"github.com/Skynami/LunFirPay/internal/models"
)

// 支付方式目录缓存。目录是静态配置，运行期只读，
// 管理端写入时失效，路由读取时按 TTL 兜底刷新。
const (
	payTypeCatalogKey = "pay_type:catalog"
	payTypeCatalogTTL = 5 * time.Minute
)

// GetPayTypeCatalog 读取支付方式目录缓存，未启用或未命中时返回 (nil, false, nil)
func GetPayTypeCatalog(ctx context.Context) ([]models.PayType, bool, error) {
	var catalog []models.PayType
	hit, err := GetJSON(ctx, payTypeCatalogKey, &catalog)
	if err != nil || !hit {
		return nil, false, err
	}
	return catalog, true, nil
}

// SetPayTypeCatalog 写入支付方式目录缓存
func SetPayTypeCatalog(ctx context.Context, catalog []models.PayType) error {
	return SetJSON(ctx, payTypeCatalogKey, catalog, payTypeCatalogTTL)
}

// DelPayTypeCatalog 失效支付方式目录缓存，管理端增删改后调用
func DelPayTypeCatalog(ctx context.Context) error {
	return Del(ctx, payTypeCatalogKey)
}
