package payment

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CaptureFunc confirms an approved payment by id. Wired to the invoice
// service's Capture in the composition root.
type CaptureFunc func(ctx context.Context, paymentID string) error

// Result is delivered once per return from the external payment page.
type Result struct {
	PaymentID string
	Canceled  bool
	Err       error
}

// Listener is the local return target for the external payment redirect.
// After the buyer approves (or cancels) in the payment page, the provider
// redirects the browser here; the success handler runs the capture and the
// host learns the outcome through Results.
type Listener struct {
	httpServer *http.Server
	logger     *log.Logger
	capture    CaptureFunc
	results    chan Result
}

// New builds a Listener bound to addr.
func New(addr string, logger *log.Logger, capture CaptureFunc) *Listener {
	l := &Listener{
		logger:  logger,
		capture: capture,
		results: make(chan Result, 1),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/paypal/success", l.successHandler)
	router.GET("/paypal/cancel", l.cancelHandler)

	l.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return l
}

// ListenAndServe starts the HTTP listener.
func (l *Listener) ListenAndServe() error {
	return l.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the listener.
func (l *Listener) Shutdown(ctx context.Context) error {
	return l.httpServer.Shutdown(ctx)
}

// Results delivers one Result per completed redirect.
func (l *Listener) Results() <-chan Result {
	return l.results
}

func (l *Listener) successHandler(c *gin.Context) {
	paymentID := c.Query("paypal_order_id")
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing paypal_order_id"})
		return
	}

	err := l.capture(c.Request.Context(), paymentID)
	if err != nil {
		l.logger.Printf("capture %s: %v", paymentID, err)
		l.deliver(Result{PaymentID: paymentID, Err: err})
		c.JSON(http.StatusBadGateway, gin.H{"detail": "payment capture failed"})
		return
	}

	l.deliver(Result{PaymentID: paymentID})
	c.String(http.StatusOK, "Payment confirmed. You may close this page.")
}

func (l *Listener) cancelHandler(c *gin.Context) {
	l.deliver(Result{Canceled: true})
	c.String(http.StatusOK, "Payment canceled. You may close this page.")
}

// deliver never blocks the HTTP handler; if nobody is waiting the result is
// dropped after the buffered slot fills.
func (l *Listener) deliver(r Result) {
	select {
	case l.results <- r:
	default:
	}
}
