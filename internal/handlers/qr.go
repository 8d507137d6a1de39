// internal/handlers/qr.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// QRHandler serves GET /qr/:code as a PNG QR code pointing at the lobby
// join URL, for sharing a lobby with phones in the room.
func QRHandler(logger *logrus.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")
		if code == "" || len(code) > 64 {
			http.Error(w, "invalid lobby code", http.StatusBadRequest)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		joinURL := fmt.Sprintf("%s://%s/lobby/%s", scheme, r.Host, code)

		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			logger.Warnf("qr encode for lobby %s failed: %v", code, err)
			http.Error(w, "failed to generate qr code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}

// HealthHandler serves GET /healthz.
func HealthHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
