package repositories

import (
	"context"

	"github.com/shashiranjanraj/kuman/app/models"
)

// OrderRepository reads orders.
type OrderRepository struct {
	c *Client
}

func NewOrderRepository(c *Client) *OrderRepository {
	return &OrderRepository{c: c}
}

// All returns every order.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := fetch(r.c.get(ctx, "orders", "/admin/order"), &orders)
	return orders, err
}

// Today returns the orders placed today.
func (r *OrderRepository) Today(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := fetch(r.c.get(ctx, "orders.today", "/admin/order/today"), &orders)
	return orders, err
}

// Info returns the header of one order.
func (r *OrderRepository) Info(ctx context.Context, orderID int64) (models.Order, error) {
	var o models.Order
	err := fetchOne(r.c.get(ctx, "orders.info", "/admin/order/info").Query("orderId", id(orderID)), &o)
	return o, err
}

// Detail returns the line items of one order.
func (r *OrderRepository) Detail(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := fetch(r.c.get(ctx, "orders.detail", "/admin/order/detail").Query("orderId", id(orderID)), &items)
	return items, err
}

// ByShop returns the orders of one shop.
func (r *OrderRepository) ByShop(ctx context.Context, shopID int64) ([]models.Order, error) {
	var orders []models.Order
	err := fetch(r.c.get(ctx, "shops.orders", "/admin/canteen/shop/order").Query("shopId", id(shopID)), &orders)
	return orders, err
}
