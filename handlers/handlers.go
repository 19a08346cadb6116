package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront-service/internal/auth"
	"storefront-service/internal/catalog"
	"storefront-service/internal/orders"
	"storefront-service/internal/stores/kafka"
	"storefront-service/middleware"
	"storefront-service/pkg/metrics"
)

type Handler struct {
	o        *orders.Service
	c        *catalog.Conf
	k        *kafka.Conf
	m        *metrics.OrderMetrics
	validate *validator.Validate
}

func NewHandler(o *orders.Service, c *catalog.Conf, k *kafka.Conf, m *metrics.OrderMetrics) *Handler {
	return &Handler{
		o:        o,
		c:        c,
		k:        k,
		m:        m,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, o *orders.Service, c *catalog.Conf,
	kafkaConf *kafka.Conf, orderMetrics *metrics.OrderMetrics) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(o, c, kafkaConf, orderMetrics)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/checkout", h.Checkout)
		v1.GET("/orders/:id", h.GetOrder)
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)
	}

	admin := r.Group(endpointPrefix)
	{
		admin.Use(m.Authentication())
		admin.GET("/orders", m.Authorize(h.ListOrders, auth.RoleAdmin))
		admin.PATCH("/orders/:id/status", m.Authorize(h.UpdateOrderStatus, auth.RoleAdmin))
		admin.DELETE("/orders/:id", m.Authorize(h.DeleteOrder, auth.RoleAdmin))
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}
