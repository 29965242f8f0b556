package http

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"periodic-table-service/internal/domain"
)

// AssetFetcher is the part of the asset worker the handler needs.
type AssetFetcher interface {
	Fetch(ctx context.Context, req *http.Request) (domain.CachedResponse, error)
}

// AssetHandler serves every request through the asset worker. Websocket
// upgrades are never cached; they go to the upgrade proxy when one is set.
type AssetHandler struct {
	worker   AssetFetcher
	upgrades http.Handler
	log      *zap.Logger
}

func NewAssetHandler(worker AssetFetcher, upgrades http.Handler, log *zap.Logger) *AssetHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetHandler{worker: worker, upgrades: upgrades, log: log}
}

// NewUpgradeProxy forwards connection upgrades to upstream unchanged.
func NewUpgradeProxy(upstream *url.URL, log *zap.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if log != nil {
			log.Warn("upgrade proxy failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	return proxy
}

func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		if h.upgrades == nil {
			http.Error(w, "websocket not supported", http.StatusBadGateway)
			return
		}
		h.upgrades.ServeHTTP(w, r)
		return
	}

	resp, err := h.worker.Fetch(r.Context(), r)
	if err != nil {
		h.log.Warn("upstream failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}

	for k, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	if resp.Source != "" {
		w.Header().Set("X-Asset-Source", string(resp.Source))
	}
	if r.Method == http.MethodHead {
		// HEAD carries no body; keep whatever length the upstream reported
		w.WriteHeader(resp.Status)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
