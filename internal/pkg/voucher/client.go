// Package voucher talks to the gift-voucher provider used for wallet top-ups.
package voucher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrInvalidVoucher is returned when a link carries no usable voucher code.
	ErrInvalidVoucher = errors.New("invalid voucher link")

	codePattern = regexp.MustCompile(`^[A-Za-z0-9]{8,64}$`)
)

// ProviderError is a refusal reported by the provider, e.g. VOUCHER_OUT_OF_STOCK.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("voucher provider: %s: %s", e.Code, e.Message)
}

// Result is a successful redemption.
type Result struct {
	Code        string
	AmountMinor int64
}

// Client represents the voucher provider HTTP client.
type Client struct {
	http  *resty.Client
	phone string
}

// NewClient creates a provider client redeeming into the account identified by phone.
func NewClient(baseURL, phone string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: http, phone: phone}
}

type redeemRequest struct {
	Mobile      string `json:"mobile"`
	VoucherHash string `json:"voucher_hash"`
}

type redeemResponse struct {
	Status struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Data struct {
		MyTicket struct {
			AmountBaht string `json:"amount_baht"`
		} `json:"my_ticket"`
	} `json:"data"`
}

// Redeem claims the voucher. A *ProviderError means the provider refused it;
// any other error leaves the outcome unknown.
func (c *Client) Redeem(ctx context.Context, code string) (*Result, error) {
	if c.phone == "" {
		return nil, fmt.Errorf("voucher config error: account phone is empty")
	}

	var out redeemResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetBody(redeemRequest{Mobile: c.phone, VoucherHash: code}).
		SetResult(&out).
		SetError(&out).
		Post("/campaign/vouchers/{code}/redeem")
	if err != nil {
		return nil, fmt.Errorf("voucher redeem request: %w", err)
	}

	if out.Status.Code == "" {
		return nil, fmt.Errorf("voucher redeem: unexpected response status=%d body=%s", resp.StatusCode(), truncate(resp.String(), 512))
	}
	if out.Status.Code != "SUCCESS" {
		return nil, &ProviderError{Code: out.Status.Code, Message: out.Status.Message}
	}

	amount, err := decimal.NewFromString(out.Data.MyTicket.AmountBaht)
	if err != nil {
		return nil, fmt.Errorf("voucher redeem: bad amount %q: %w", out.Data.MyTicket.AmountBaht, err)
	}
	return &Result{Code: code, AmountMinor: amount.Shift(2).IntPart()}, nil
}

// ParseCode extracts the voucher code from a share link such as
// https://gift.truemoney.com/campaign/?v=abc123. A bare code is accepted as-is.
func ParseCode(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrInvalidVoucher
	}
	code := link
	if strings.Contains(link, "://") {
		u, err := url.Parse(link)
		if err != nil {
			return "", ErrInvalidVoucher
		}
		code = u.Query().Get("v")
	}
	if !codePattern.MatchString(code) {
		return "", ErrInvalidVoucher
	}
	return code, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "...<truncated>"
	}
	return s
}
