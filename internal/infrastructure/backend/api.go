package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
)

// Login exchanges staff credentials for a backend token.
func (c *Client) Login(ctx context.Context, username, password string) (string, *entity.StaffUser, error) {
	var resp loginResponse
	err := c.run(ctx, "login", func(ctx context.Context) error {
		return c.send(ctx, http.MethodPost, "/auth/login/", "", loginRequest{Username: username, Password: password}, &resp)
	})
	if err != nil {
		return "", nil, err
	}
	if resp.Token == "" {
		return "", nil, fmt.Errorf("backend login: empty token")
	}

	user := resp.User
	user.Staff = resp.Staff
	return resp.Token, &user, nil
}

// Logout revokes token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.send(ctx, http.MethodPost, "/auth/logout/", token, nil, nil)
}

// ListCategories returns the active goods categories.
func (c *Client) ListCategories(ctx context.Context, token string) ([]entity.GoodsCategory, error) {
	var list listOf[wireCategory]
	err := c.run(ctx, "list categories", func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, "/categories/", token, nil, &list)
	})
	if err != nil {
		return nil, err
	}

	categories := make([]entity.GoodsCategory, 0, len(list))
	for _, wc := range list {
		if wc.IsActive != nil && !*wc.IsActive {
			continue
		}
		categories = append(categories, wc.GoodsCategory)
	}
	return categories, nil
}

// SearchCustomers finds customers whose company name contains query.
func (c *Client) SearchCustomers(ctx context.Context, token, query string) ([]entity.Customer, error) {
	path := "/customers/?search=" + url.QueryEscape(query)

	var list listOf[entity.Customer]
	err := c.run(ctx, "search customers", func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, path, token, nil, &list)
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []entity.Customer{}, nil
	}
	return list, nil
}

// CreateOrGetCustomer returns the customer named companyName, creating it
// with empty contact details when it does not exist yet.
func (c *Client) CreateOrGetCustomer(ctx context.Context, token, companyName string) (*entity.Customer, error) {
	var customer entity.Customer
	err := c.run(ctx, "create customer", func(ctx context.Context) error {
		return c.send(ctx, http.MethodPost, "/customers/create_or_get/", token,
			createCustomerRequest{CompanyName: companyName}, &customer)
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateReceipt issues a receipt and returns it as persisted.
func (c *Client) CreateReceipt(ctx context.Context, token string, s *entity.ReceiptSubmission) (*entity.PersistedReceipt, error) {
	var created wireReceipt
	err := c.run(ctx, "create receipt", func(ctx context.Context) error {
		return c.send(ctx, http.MethodPost, "/receipts/", token, newReceiptPayload(s), &created)
	})
	if err != nil {
		return nil, err
	}
	return created.receipt(), nil
}

// GetReceipt loads a persisted receipt by id.
func (c *Client) GetReceipt(ctx context.Context, token string, id int64) (*entity.PersistedReceipt, error) {
	var r wireReceipt
	err := c.run(ctx, "get receipt", func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, fmt.Sprintf("/receipts/%d/", id), token, nil, &r)
	})
	if err != nil {
		return nil, err
	}
	return r.receipt(), nil
}

// DashboardStats returns the backend's headline counts.
func (c *Client) DashboardStats(ctx context.Context, token string) (*entity.DashboardStats, error) {
	var stats entity.DashboardStats
	err := c.run(ctx, "dashboard stats", func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, "/staff/dashboard_stats/", token, nil, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
