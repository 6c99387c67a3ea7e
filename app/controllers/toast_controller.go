package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/toast"
)

// heartbeat keeps idle streams open through proxies.
var heartbeat = 15 * time.Second

// ToastController streams the visitor's notifications.
type ToastController struct {
	toasts *toast.Sessions
}

func NewToastController(toasts *toast.Sessions) *ToastController {
	return &ToastController{toasts: toasts}
}

type subscribed struct {
	Subscriber uint64        `json:"subscriber"`
	TTLMillis  int64         `json:"ttl_ms"`
	Visible    []toast.Toast `json:"visible"`
}

// Stream godoc
// GET /api/toasts/stream
//
// Opens a subscriber for the session and streams "added" and "removed"
// events until the client goes away. The first event, "subscribed", carries
// the subscriber id used to dismiss.
func (tc *ToastController) Stream(c *ctx.Context) {
	hub, sub := tc.toasts.Subscribe(c.SessionID())
	defer sub.Unsubscribe()

	stream, err := sse.New(c.W, c.R)
	if err != nil {
		c.Error(http.StatusInternalServerError, err.Error())
		return
	}

	gauge := metrics.LiveClients.WithLabelValues("sse")
	gauge.Inc()
	defer gauge.Dec()

	stream.Retry(3 * time.Second)
	if err := stream.Send("subscribed", "", subscribed{
		Subscriber: sub.ID(),
		TTLMillis:  hub.TTL().Milliseconds(),
		Visible:    sub.Visible(),
	}); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-stream.Done():
			return
		case <-ticker.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			id := strconv.FormatUint(ev.Toast.ID, 10)
			if err := stream.Send(string(ev.Kind), id, ev.Toast); err != nil {
				logger.WithCtx(c.Context()).Debug("toast: stream closed", "error", err)
				return
			}
		}
	}
}

// Dismiss godoc
// POST /api/toasts/stream/{sub}/dismiss/{id}
//
// Dismissing twice, or after expiry, is not an error.
func (tc *ToastController) Dismiss(c *ctx.Context) {
	subID, err1 := strconv.ParseUint(c.Param("sub"), 10, 64)
	toastID, err2 := strconv.ParseUint(c.Param("id"), 10, 64)
	if err1 != nil || err2 != nil {
		c.NotFound()
		return
	}

	sub, ok := tc.toasts.For(c.SessionID()).Subscriber(subID)
	if !ok {
		c.NotFound("No such notification stream.")
		return
	}
	c.Success(map[string]bool{"dismissed": sub.Dismiss(toastID)})
}
