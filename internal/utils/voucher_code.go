package utils

import (
	"strings"
	"time"
)

// VoucherCodePrefix starts every voucher ID.
const VoucherCodePrefix = "VCH"

// NewVoucherCode returns a human-readable voucher ID such as "VCH-20240310-9F2C41AB07".
// The random part carries 40 bits; uniqueness is still enforced by storage.
func NewVoucherCode(now time.Time) (string, error) {
	suffix, err := GenerateSecureRandomString(5)
	if err != nil {
		return "", err
	}
	return VoucherCodePrefix + "-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(suffix), nil
}
