package repository

import "time"

// ChannelListFilter 查询渠道列表的过滤条件
type ChannelListFilter struct {
	Page         int
	PageSize     int
	ProviderType string
	PayType      string
	ActiveOnly   bool
}

// PayGroupListFilter 查询支付组列表的过滤条件
type PayGroupListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// ChannelGroupListFilter 查询渠道组列表的过滤条件
type ChannelGroupListFilter struct {
	Page       int
	PageSize   int
	Strategy   string
	ActiveOnly bool
}

// MerchantListFilter 查询商户列表的过滤条件
type MerchantListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	MerchantID  uint
	ChannelID   uint
	PayType     string
	Status      string
	TradeNo     string
	OutTradeNo  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
