// Package seed installs the demo catalogue, accounts and orders on first
// start. A key that already exists in storage is never overwritten.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
)

// Ensure writes the default snapshot for every collection key that has never
// been written. Existing data always wins.
func Ensure(ctx context.Context, adapter kv.Adapter, logger *slog.Logger) error {
	users, err := DefaultUsers()
	if err != nil {
		return fmt.Errorf("build default users: %w", err)
	}

	defaults := map[string]any{
		"products":          DefaultProducts(),
		"users":             users,
		"orders":            DefaultOrders(),
		"adminApplications": []domain.AdminApplication{},
		"settings":          DefaultSettings(),
	}

	for key, value := range defaults {
		_, ok, err := adapter.Load(ctx, key)
		if err != nil {
			return fmt.Errorf("check %s: %w", key, err)
		}
		if ok {
			continue
		}

		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s defaults: %w", key, err)
		}
		if err := adapter.Save(ctx, key, data); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
		logger.Info("seeded default data", "key", key)
	}
	return nil
}

func meta(id string, created, updated time.Time) domain.Meta {
	return domain.Meta{ID: id, CreatedAt: created, UpdatedAt: updated}
}

var (
	seedCreated = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedUpdated = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

func DefaultProducts() []domain.Product {
	return []domain.Product{
		{
			Meta:          meta("prod_1", seedCreated, seedUpdated),
			Name:          "iPhone 14 Pro",
			Category:      domain.CategoryDigital,
			Price:         8999,
			OriginalPrice: 9999,
			Stock:         50,
			Status:        domain.ProductStatusActive,
			Description:   "新一代iPhone，强大的A16芯片，4800万像素主摄像头",
			Features:      []string{"A16芯片", "4800万像素", "灵动岛", "5G网络"},
			SalesCount:    156,
			Rating:        4.8,
			ReviewCount:   89,
		},
		{
			Meta:          meta("prod_2", seedCreated, seedUpdated),
			Name:          "MacBook Pro",
			Category:      domain.CategoryDigital,
			Price:         12999,
			OriginalPrice: 14999,
			Stock:         30,
			Status:        domain.ProductStatusActive,
			Description:   "专业级笔记本电脑，M2芯片，超强性能",
			Features:      []string{"M2芯片", "16GB内存", "512GB存储", "Retina显示屏"},
			SalesCount:    89,
			Rating:        4.9,
			ReviewCount:   45,
		},
		{
			Meta:          meta("prod_3", seedCreated, seedUpdated),
			Name:          "夏季连衣裙",
			Category:      domain.CategoryClothing,
			Price:         299,
			OriginalPrice: 399,
			Stock:         100,
			Status:        domain.ProductStatusActive,
			Description:   "时尚夏季连衣裙，舒适面料，多种颜色可选",
			Features:      []string{"纯棉面料", "多色可选", "透气舒适", "机洗不变形"},
			SalesCount:    245,
			Rating:        4.5,
			ReviewCount:   120,
		},
		{
			Meta:          meta("prod_4", seedCreated, seedUpdated),
			Name:          "男士衬衫",
			Category:      domain.CategoryClothing,
			Price:         199,
			OriginalPrice: 299,
			Stock:         80,
			Status:        domain.ProductStatusActive,
			Description:   "商务休闲男士衬衫，经典款式",
			Features:      []string{"免烫面料", "多尺寸", "商务休闲", "易打理"},
			SalesCount:    132,
			Rating:        4.3,
			ReviewCount:   67,
		},
		{
			Meta:          meta("prod_5", seedCreated, seedUpdated),
			Name:          "无线耳机",
			Category:      domain.CategoryDigital,
			Price:         399,
			OriginalPrice: 599,
			Stock:         25,
			Status:        domain.ProductStatusActive,
			Description:   "高品质无线蓝牙耳机，降噪功能",
			Features:      []string{"主动降噪", "30小时续航", "蓝牙5.2", "防水防汗"},
			SalesCount:    187,
			Rating:        4.6,
			ReviewCount:   93,
		},
		{
			Meta:          meta("prod_6", seedCreated, seedUpdated),
			Name:          "运动鞋",
			Category:      domain.CategorySports,
			Price:         459,
			OriginalPrice: 599,
			Stock:         60,
			Status:        domain.ProductStatusInactive,
			Description:   "专业运动鞋，缓震舒适",
			Features:      []string{"气垫缓震", "防滑鞋底", "透气网面", "多尺码"},
			SalesCount:    78,
			Rating:        4.4,
			ReviewCount:   34,
		},
	}
}

// DefaultUsers hashes the demo passwords at seed time; plain-text passwords
// are never stored.
func DefaultUsers() ([]domain.User, error) {
	zhang, err := hash("123456")
	if err != nil {
		return nil, err
	}
	li, err := hash("123456")
	if err != nil {
		return nil, err
	}
	wang, err := hash("123456")
	if err != nil {
		return nil, err
	}
	admin, err := hash("admin123")
	if err != nil {
		return nil, err
	}

	lastLogin := func(s string) *time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return &t
	}

	return []domain.User{
		{
			Meta:         meta("user_1", seedCreated, seedUpdated),
			Name:         "张小明",
			Email:        "zhang@example.com",
			PasswordHash: zhang,
			Phone:        "13800138001",
			Status:       domain.UserStatusActive,
			Level:        domain.LevelGold,
			TotalOrders:  5,
			TotalSpent:   3899,
			Role:         domain.RoleUser,
			LastLogin:    lastLogin("2024-01-15T14:30:00Z"),
		},
		{
			Meta:         meta("user_2", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), seedUpdated),
			Name:         "李小红",
			Email:        "li@example.com",
			PasswordHash: li,
			Phone:        "13900139001",
			Status:       domain.UserStatusActive,
			Level:        domain.LevelSilver,
			TotalOrders:  3,
			TotalSpent:   1299,
			Role:         domain.RoleUser,
			LastLogin:    lastLogin("2024-01-14T16:20:00Z"),
		},
		{
			Meta:         meta("user_3", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), seedUpdated),
			Name:         "王刚",
			Email:        "wang@example.com",
			PasswordHash: wang,
			Phone:        "13700137001",
			Status:       domain.UserStatusActive,
			Level:        domain.LevelRegular,
			TotalOrders:  1,
			TotalSpent:   599,
			Role:         domain.RoleUser,
			LastLogin:    lastLogin("2024-01-13T10:15:00Z"),
		},
		{
			Meta:         meta("user_4", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), seedUpdated),
			Name:         "管理员",
			Email:        "admin@luyao.com",
			PasswordHash: admin,
			Phone:        "13600136001",
			Status:       domain.UserStatusActive,
			Level:        domain.LevelRegular,
			Role:         domain.RoleAdmin,
			LastLogin:    lastLogin("2024-01-15T15:45:00Z"),
		},
	}, nil
}

func DefaultOrders() []domain.Order {
	paid1 := time.Date(2024, 1, 15, 10, 35, 0, 0, time.UTC)
	completed1 := time.Date(2024, 1, 16, 14, 20, 0, 0, time.UTC)
	paid2 := time.Date(2024, 1, 14, 16, 25, 0, 0, time.UTC)

	return []domain.Order{
		{
			Meta:   meta("ORD202401150001", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), completed1),
			UserID: "user_1",
			Items: []domain.OrderItem{
				{ProductID: "prod_1", Name: "iPhone 14 Pro", Price: 8999, Quantity: 1},
				{ProductID: "prod_5", Name: "无线耳机", Price: 399, Quantity: 1},
			},
			TotalAmount:   9398,
			Status:        domain.OrderStatusCompleted,
			PaymentStatus: domain.PaymentStatusPaid,
			PaymentMethod: "alipay",
			ShippingAddress: domain.ShippingAddress{
				Name: "张小明", Phone: "13800138001",
				Address: "北京市朝阳区某某街道123号", ZipCode: "100000",
			},
			PaidAt:      &paid1,
			CompletedAt: &completed1,
		},
		{
			Meta:   meta("ORD202401140001", time.Date(2024, 1, 14, 16, 20, 0, 0, time.UTC), paid2),
			UserID: "user_2",
			Items: []domain.OrderItem{
				{ProductID: "prod_3", Name: "夏季连衣裙", Price: 299, Quantity: 2},
			},
			TotalAmount:   598,
			Status:        domain.OrderStatusProcessing,
			PaymentStatus: domain.PaymentStatusPaid,
			PaymentMethod: "wechat",
			ShippingAddress: domain.ShippingAddress{
				Name: "李小红", Phone: "13900139001",
				Address: "上海市浦东新区某某路456号", ZipCode: "200000",
			},
			PaidAt: &paid2,
		},
		{
			Meta:   meta("ORD202401130001", time.Date(2024, 1, 13, 10, 15, 0, 0, time.UTC), time.Date(2024, 1, 13, 10, 15, 0, 0, time.UTC)),
			UserID: "user_3",
			Items: []domain.OrderItem{
				{ProductID: "prod_5", Name: "无线耳机", Price: 399, Quantity: 1},
				{ProductID: "prod_4", Name: "男士衬衫", Price: 199, Quantity: 1},
			},
			TotalAmount:   598,
			Status:        domain.OrderStatusPending,
			PaymentStatus: domain.PaymentStatusUnpaid,
			PaymentMethod: "alipay",
			ShippingAddress: domain.ShippingAddress{
				Name: "王刚", Phone: "13700137001",
				Address: "广州市天河区某某大道789号", ZipCode: "510000",
			},
		},
	}
}

func DefaultSettings() domain.Settings {
	return domain.Settings{
		SiteName:      "璐瑶购物",
		Currency:      "¥",
		Language:      "zh-CN",
		ContactPhone:  "09-665596297",
		ContactEmail:  "luy56913@gmail.com",
		Telegram:      "@ryh888c",
		Address:       "全国100+门店",
		BusinessHours: "09:00-18:00",
		AutoBackup:    true,
		LowStockAlert: 10,
		TaxRate:       0.13,
	}
}

func hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
