package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/repositories"
	"github.com/shashiranjanraj/kuman/app/services"
	"github.com/shashiranjanraj/kuman/pkg/session"
	"github.com/shashiranjanraj/kuman/pkg/storage"
	"github.com/shashiranjanraj/kuman/pkg/testkit"
	"github.com/shashiranjanraj/kuman/pkg/validate"
	"github.com/shashiranjanraj/kuman/pkg/workerpool"
	"github.com/shashiranjanraj/kuman/pkg/ws"
)

const base = "http://api.test"

type fixture struct {
	mt     *testkit.MockTransport
	sess   *session.Manager
	client *repositories.Client
}

func setup(t *testing.T) fixture {
	t.Helper()
	mt := testkit.Install(t)
	sess := session.NewManager(session.NewMemoryStore(), nil)
	return fixture{mt: mt, sess: sess, client: repositories.NewClient(base, sess, 0)}
}

func TestMergeSupport(t *testing.T) {
	got := services.MergeSupport(models.ChatList{
		Requester: []models.ChatEntry{{RequesterID: 1, OrderID: 10, Username: "ann"}},
		Walker:    []models.ChatEntry{{WalkerID: 2, OrderID: 11, Username: "bob"}},
	})

	require.Len(t, got, 2)
	assert.Equal(t, models.RoleRequester, got[0].Role)
	assert.Equal(t, int64(1), got[0].UserID)
	assert.Equal(t, models.RoleWalker, got[1].Role)
	assert.Equal(t, int64(2), got[1].UserID)
	assert.Empty(t, services.MergeSupport(models.ChatList{}))
}

func TestSupportService_Requests(t *testing.T) {
	f := setup(t)
	f.mt.On("GET", "/admin/chat").Raw(200, "application/json",
		`{"requester":[{"requesterId":1,"orderId":5}],"walker":[{"walkerId":2,"orderId":6}]}`)

	got, err := services.NewSupportService(repositories.NewAdminRepository(f.client)).Requests(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].UserID)
}

func TestAuthService_LoginLogout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := services.NewAuthService(repositories.NewAdminRepository(f.client), f.sess)

	err := svc.Login(ctx, models.Credentials{})
	assert.ErrorIs(t, err, validate.ErrInvalid)
	assert.Empty(t, f.mt.Calls("POST", "/admin/login"), "invalid input never reaches the API")

	f.mt.On("POST", "/admin/login").JSON(401, map[string]string{"message": "bad credentials"})
	assert.Error(t, svc.Login(ctx, models.Credentials{Username: "admin", Password: "nope"}))
	assert.False(t, f.sess.Authenticated())

	f.mt.On("POST", "/admin/login").JSON(200, models.LoginResult{Token: "abc"})
	require.NoError(t, svc.Login(ctx, models.Credentials{Username: "admin", Password: "pw"}))
	assert.Equal(t, "abc", f.sess.Token())

	_, err = svc.Whoami()
	assert.Error(t, err, "opaque token is not a JWT")

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Whoami()
	assert.ErrorIs(t, err, services.ErrNotLoggedIn)
}

func TestVerifyService(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.mt.On("POST", "/admin/verify").Raw(200, "", "")
	f.mt.On("GET", "/admin/verify").JSON(200, []models.VerificationCandidate{{WalkerID: 4, Username: "w"}})
	svc := services.NewVerifyService(repositories.NewVerifyRepository(f.client))

	require.NoError(t, svc.Approve(ctx, 4))
	require.NoError(t, svc.Reject(ctx, 5))
	assert.ErrorIs(t, svc.Approve(ctx, 0), validate.ErrInvalid)

	calls := f.mt.Calls("POST", "/admin/verify")
	require.Len(t, calls, 2)
	var d models.Decision
	require.NoError(t, calls[1].Decode(&d))
	assert.Equal(t, models.Decision{WalkerID: 5, Status: false}, d)

	c, err := svc.Find(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "w", c.Username)
	_, err = svc.Find(ctx, 9)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserService(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.mt.On("GET", "/admin/walker").JSON(200, []models.Walker{{WalkerID: 1}})
	f.mt.On("GET", "/admin/walkerALL").JSON(200, []models.Walker{{WalkerID: 1}, {WalkerID: 2}})
	svc := services.NewUserService(repositories.NewUserRepository(f.client), repositories.NewAdminRepository(f.client))

	walkers, err := svc.Walkers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, walkers, 1)
	walkers, err = svc.Walkers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, walkers, 2)

	assert.ErrorIs(t, svc.SendEmail(ctx, models.Email{Email: "nope"}), validate.ErrInvalid)
	assert.ErrorIs(t, svc.Delete(ctx, 0), validate.ErrInvalid)
}

func TestDashboard_Refresh(t *testing.T) {
	f := setup(t)
	now := time.Date(2024, 3, 1, 15, 0, 0, 0, time.Local)
	nine := models.At(time.Date(2024, 3, 1, 9, 10, 0, 0, time.Local))

	f.mt.On("GET", "/admin/order").JSON(200, []models.Order{
		{OrderID: 1, OrderStatus: models.StatusCompleted, TotalPrice: 100, ShippingFee: 10},
		{OrderID: 2, OrderStatus: models.StatusInProgress},
		{OrderID: 3, OrderStatus: models.StatusLookingForWalker},
		{OrderID: 4, OrderStatus: models.StatusCancelled},
	})
	f.mt.On("GET", "/admin/order/today").JSON(200, []models.Order{{OrderID: 2, WalkerID: 7, OrderDate: nine}})
	f.mt.On("GET", "/admin/chat").JSON(200, models.ChatList{Requester: []models.ChatEntry{{RequesterID: 1}}})
	f.mt.On("GET", "/admin/verify").JSON(200, []models.VerificationCandidate{{WalkerID: 1}, {WalkerID: 2}})
	f.mt.On("GET", "/admin/walkerALL").JSON(200, []models.Walker{{RegisterAt: models.At(now)}})
	f.mt.On("GET", "/admin/requester").JSON(500, map[string]string{"error": "down"})
	f.mt.On("GET", "/admin/canteen").JSON(200, []models.Canteen{{CanteenID: 1}, {CanteenID: 2}})
	f.mt.On("GET", "/admin/canteen/shop").JSON(200, []models.Shop{{Status: true}, {Status: false}})

	pool := workerpool.New(2)
	defer pool.Shutdown()
	d := services.NewDashboard(services.DashboardDeps{
		Orders:   repositories.NewOrderRepository(f.client),
		Users:    repositories.NewUserRepository(f.client),
		Verify:   repositories.NewVerifyRepository(f.client),
		Canteens: repositories.NewCanteenRepository(f.client),
		Support:  services.NewSupportService(repositories.NewAdminRepository(f.client)),
		Pool:     pool,
		Now:      func() time.Time { return now },
	})

	snap := d.Refresh(context.Background())

	assert.True(t, snap.Loaded)
	assert.Equal(t, 4, snap.Orders.Total)
	assert.Equal(t, 2, snap.OnProcess)
	assert.Equal(t, 2, snap.CompletedProcess)
	assert.Equal(t, 50, snap.OnProcessPct)
	assert.Equal(t, 100.0, snap.Income.Revenue)
	assert.Equal(t, 1, snap.TodayOrders)
	assert.Equal(t, 1, snap.Hourly.Walker[3])
	assert.Equal(t, 1, snap.NewUsers.Walkers)
	assert.Equal(t, 0, snap.NewUsers.Requesters)
	assert.Equal(t, 2, snap.OpenShops.Open)
	assert.Equal(t, 4, snap.OpenShops.Total)
	assert.Equal(t, 50, snap.OpenShopPct)
	assert.Equal(t, 1, snap.SupportRequests)
	assert.Equal(t, 2, snap.PendingVerify)
	assert.Contains(t, snap.Errors, "requesters")
	assert.Len(t, f.mt.Calls("GET", "/admin/canteen/shop"), 2)
}

func TestExportService_Orders(t *testing.T) {
	disk := storage.NewLocal(t.TempDir())
	svc := services.NewExportService(disk)

	loc, err := svc.Orders(context.Background(), []models.Order{{OrderID: 1, OrderStatus: models.StatusCompleted, TotalPrice: 12.5}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc, "file://"))

	path := strings.TrimPrefix(loc, disk.URL(""))
	data, err := disk.Get(strings.TrimLeft(path, "/"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "orderId,orderStatus")
	assert.Contains(t, string(data), "1,completed,,,,0,0,12.50,0.00,")
}

// ─── chat ─────────────────────────────────────────────────────────────────────

func chatServer(t *testing.T, joined chan<- models.JoinRequest) string {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var env ws.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			switch env.Event {
			case services.EventJoin:
				var j models.JoinRequest
				_ = env.Decode(&j)
				joined <- j
			case services.EventMessage:
				reply := models.ChatMessage{OrderID: 5, Message: "thanks", FromUser: "ann", Role: models.RoleRequester}
				_ = conn.WriteJSON(map[string]any{"event": "message", "data": reply})
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestChat_JoinSendReceive(t *testing.T) {
	joined := make(chan models.JoinRequest, 1)
	svc := services.NewChatService(chatServer(t, joined), nil)

	conv, err := svc.Open(context.Background(), models.JoinRequest{UserID: 1, Role: models.RoleRequester, OrderID: 5}, "admin")
	require.NoError(t, err)
	defer conv.Close()

	select {
	case j := <-joined:
		assert.Equal(t, models.JoinRequest{UserID: 1, Role: models.RoleRequester, OrderID: 5}, j)
	case <-time.After(2 * time.Second):
		t.Fatal("join never arrived")
	}

	require.NoError(t, conv.Send("hello"))
	first := conv.Transcript()
	require.Len(t, first, 1, "sent message is appended before any echo")
	assert.Equal(t, models.RoleAdmin, first[0].TargetRole)
	assert.Equal(t, "admin", first[0].FromUser)

	require.Eventually(t, func() bool { return len(conv.Transcript()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "thanks", conv.Transcript()[1].Message)
}

func TestChat_OpenValidatesScope(t *testing.T) {
	svc := services.NewChatService("ws://127.0.0.1:1/none", nil)
	_, err := svc.Open(context.Background(), models.JoinRequest{UserID: 1, Role: "admin", OrderID: 1}, "admin")
	assert.Error(t, err)
	_, err = svc.Open(context.Background(), models.JoinRequest{Role: models.RoleWalker}, "admin")
	assert.Error(t, err)
}
