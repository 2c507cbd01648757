package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// BuildMerchantSign 生成商户接口签名
// 参数按 ASCII 排序拼接为 k=v&k=v，空值与 sign/sign_type 不参与签名
func BuildMerchantSign(params map[string]string, secret string) string {
	var keys []string
	for k, v := range params {
		if v == "" {
			continue
		}
		if k == "sign" || k == "sign_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	content := strings.Join(pairs, "&")
	sum := md5.Sum([]byte(content + secret))
	return strings.ToLower(hex.EncodeToString(sum[:]))
}

// VerifyMerchantSign 校验商户接口签名
func VerifyMerchantSign(params map[string]string, secret string) bool {
	sign := strings.TrimSpace(params["sign"])
	if sign == "" {
		return false
	}
	expected := BuildMerchantSign(params, secret)
	return strings.EqualFold(sign, expected)
}
