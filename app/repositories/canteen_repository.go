package repositories

import (
	"context"

	"github.com/shashiranjanraj/kuman/app/models"
)

type CanteenRepository struct {
	c *Client
}

func NewCanteenRepository(c *Client) *CanteenRepository {
	return &CanteenRepository{c: c}
}

func (r *CanteenRepository) Canteens(ctx context.Context) ([]models.Canteen, error) {
	var cs []models.Canteen
	err := fetch(r.c.get(ctx, "canteens", "/admin/canteen"), &cs)
	return cs, err
}

func (r *CanteenRepository) Shops(ctx context.Context, canteenID int64) ([]models.Shop, error) {
	var shops []models.Shop
	err := fetch(r.c.get(ctx, "shops", "/admin/canteen/shop").Query("canteenId", id(canteenID)), &shops)
	return shops, err
}

func (r *CanteenRepository) Menu(ctx context.Context, shopID int64) ([]models.Menu, error) {
	var menu []models.Menu
	err := fetch(r.c.get(ctx, "shops.menu", "/admin/canteen/shop/menu").Query("shopId", id(shopID)), &menu)
	return menu, err
}

func (r *CanteenRepository) ShopInfo(ctx context.Context, shopID int64) (models.ShopInfo, error) {
	var info models.ShopInfo
	err := fetchOne(r.c.get(ctx, "shops.info", "/admin/canteen/shop/info").Query("shopId", id(shopID)), &info)
	return info, err
}
