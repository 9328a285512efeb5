package httpserver

import (
	"context"
	"log"

	"giftcard-store/internal/checkout"
	"giftcard-store/internal/domain"
	ordersvc "giftcard-store/internal/service/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service surfaces the handlers consume. Kept narrow so tests can stub them.
type CatalogService interface {
	List(ctx context.Context) ([]domain.GiftCard, error)
	Get(ctx context.Context, id string) (*domain.GiftCard, error)
	Custom(amountCents int64) (*domain.GiftCard, error)
}

type CartService interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Add(ctx context.Context, sessionID string, card domain.GiftCard, quantity int) (*domain.Cart, error)
	ChangeQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID, lineID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type OrderService interface {
	Initiate(ctx context.Context, items []domain.CartItem) (*ordersvc.Result, error)
	Capture(ctx context.Context, orderID string) (*ordersvc.Result, error)
}

type Deps struct {
	CatalogSvc CatalogService
	CartSvc    CartService
	OrderSvc   OrderService
	Checkout   *checkout.Manager
	Bootstrap  *checkout.Bootstrap
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = corsOrigins
	corsCfg.AllowCredentials = true
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/gift-cards", listGiftCardsHandler(deps.CatalogSvc))
	router.POST("/gift-cards/custom", customGiftCardHandler(deps.CatalogSvc))
	router.GET("/checkout/config", checkoutConfigHandler(deps.Bootstrap))

	session := router.Group("/", sessionMiddleware())
	{
		session.GET("/cart", getCartHandler(deps.CartSvc))
		session.POST("/cart/items", addCartItemHandler(deps.CartSvc, deps.CatalogSvc, deps.Checkout))
		session.PATCH("/cart/items/:lineID", changeQuantityHandler(deps.CartSvc, deps.Checkout))
		session.DELETE("/cart/items/:lineID", removeCartItemHandler(deps.CartSvc, deps.Checkout))
		session.DELETE("/cart", clearCartHandler(deps.CartSvc, deps.Checkout))

		session.POST("/checkout", beginCheckoutHandler(deps.CartSvc, deps.Checkout, deps.Bootstrap))
		session.GET("/checkout", checkoutStateHandler(deps.Checkout))
		session.POST("/checkout/create-order", checkoutCreateOrderHandler(deps.Checkout))
		session.POST("/checkout/approve", checkoutApproveHandler(deps.Checkout, deps.CartSvc, logger))
		session.POST("/checkout/retry", checkoutRetryHandler(deps.Checkout))
		session.DELETE("/checkout", closeCheckoutHandler(deps.Checkout))
	}

	router.POST("/order/create", createOrderHandler(deps.OrderSvc))
	router.POST("/order/capture/:orderID", captureOrderHandler(deps.OrderSvc))

	return router
}
