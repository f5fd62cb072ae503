package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/repositories"
	"github.com/shashiranjanraj/kuman/pkg/http"
	"github.com/shashiranjanraj/kuman/pkg/session"
	"github.com/shashiranjanraj/kuman/pkg/testkit"
)

const base = "http://api.test"

func client(t *testing.T) (*repositories.Client, *testkit.MockTransport) {
	t.Helper()
	mt := testkit.Install(t)
	sess := session.NewManager(session.NewMemoryStore(), nil)
	require.NoError(t, sess.Login(context.Background(), "tok"))
	return repositories.NewClient(base, sess, 0), mt
}

func TestOrders_AllSendsBearer(t *testing.T) {
	c, mt := client(t)
	mt.On("GET", "/admin/order").JSON(200, []models.Order{{OrderID: 1}, {OrderID: 2}})

	orders, err := repositories.NewOrderRepository(c).All(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	calls := mt.Calls("GET", "/admin/order")
	require.Len(t, calls, 1)
	testkit.AssertBearer(t, calls[0], "tok")
	assert.Equal(t, "application/json", calls[0].Header.Get("Accept"))
}

func TestOrders_InfoAcceptsArrayOrObject(t *testing.T) {
	c, mt := client(t)
	repo := repositories.NewOrderRepository(c)
	ctx := context.Background()

	mt.On("GET", "/admin/order/info").JSON(200, []models.Order{{OrderID: 9}})
	o, err := repo.Info(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), o.OrderID)
	assert.Equal(t, "9", mt.Calls("GET", "/admin/order/info")[0].Query["orderId"])

	mt.On("GET", "/admin/order/info").JSON(200, models.Order{OrderID: 10})
	o, err = repo.Info(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), o.OrderID)

	mt.On("GET", "/admin/order/info").JSON(200, []models.Order{})
	_, err = repo.Info(ctx, 11)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestErrorTaxonomy(t *testing.T) {
	c, mt := client(t)
	repo := repositories.NewCanteenRepository(c)
	ctx := context.Background()

	mt.On("GET", "/admin/canteen").JSON(500, map[string]string{"error": "down"})
	_, err := repo.Canteens(ctx)
	assert.True(t, http.IsStatus(err, 500))

	mt.On("GET", "/admin/canteen").Raw(200, "text/html", "<html>")
	_, err = repo.Canteens(ctx)
	assert.ErrorIs(t, err, http.ErrUnexpectedContentType)
}

func TestReports_SearchOmitsEmptyParams(t *testing.T) {
	c, mt := client(t)
	mt.On("GET", "/admin/report/search").JSON(200, []models.Report{})

	_, err := repositories.NewReportRepository(c).Search(context.Background(),
		repositories.ReportQuery{Keyword: "late", ReportBy: models.ReporterWalker})
	require.NoError(t, err)

	q := mt.Calls("GET", "/admin/report/search")[0].Query
	assert.Equal(t, map[string]string{"keyword": "late", "reportBy": "walker"}, q)
}

func TestReports_Find(t *testing.T) {
	c, mt := client(t)
	mt.On("GET", "/admin/report").JSON(200, []models.Report{{ReportID: 1}, {ReportID: 2, Title: "cold"}})
	repo := repositories.NewReportRepository(c)

	r, err := repo.Find(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "cold", r.Title)

	_, err = repo.Find(context.Background(), 3)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAdmin_Login(t *testing.T) {
	mt := testkit.Install(t)
	repo := repositories.NewAdminRepository(repositories.NewClient(base, nil, 0))

	mt.On("POST", "/admin/login").JSON(200, models.LoginResult{Token: "abc"})
	tok, err := repo.Login(context.Background(), models.Credentials{Username: "admin", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	call := mt.Calls("POST", "/admin/login")[0]
	assert.Empty(t, call.Header.Get("Authorization"))
	var body models.Credentials
	require.NoError(t, call.Decode(&body))
	assert.Equal(t, "admin", body.Username)

	mt.On("POST", "/admin/login").JSON(200, map[string]string{})
	_, err = repo.Login(context.Background(), models.Credentials{Username: "a", Password: "b"})
	assert.ErrorIs(t, err, repositories.ErrNoToken)
}

func TestMutations(t *testing.T) {
	c, mt := client(t)
	ctx := context.Background()
	mt.On("POST", "/admin/verify").Raw(200, "", "")
	mt.On("DELETE", "/admin/delete-user/5").Raw(204, "", "")
	mt.On("POST", "/admin/send-email").Raw(200, "text/plain", "sent")

	require.NoError(t, repositories.NewVerifyRepository(c).Decide(ctx, models.Decision{WalkerID: 4, Status: true}))
	require.NoError(t, repositories.NewUserRepository(c).Delete(ctx, 5))
	require.NoError(t, repositories.NewAdminRepository(c).SendEmail(ctx,
		models.Email{Email: "a@b.co", Subject: "s", Message: "m"}))

	var d models.Decision
	require.NoError(t, mt.Calls("POST", "/admin/verify")[0].Decode(&d))
	assert.Equal(t, models.Decision{WalkerID: 4, Status: true}, d)
	mt.AssertAllCalled(t)
}
