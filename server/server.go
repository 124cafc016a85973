package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mthotham/assistant/handlers"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

// SetupRoutes wires the assistant's HTTP surface onto a router.
func SetupRoutes(health *handlers.HealthHandler, ingest *handlers.IngestHandler, chat *handlers.ChatHandler) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/health", health).Methods("GET")

	r.HandleFunc("/ingest", ingest.HandleIngest).Methods("POST")
	r.HandleFunc("/ingest/default-files", ingest.HandleDefaultFiles).Methods("GET")

	r.HandleFunc("/chat", chat.HandleChat).Methods("POST")
	r.HandleFunc("/GetData", chat.HandleGetData).Methods("GET")

	return r
}

// ServeProduction serves HTTPS with autocert-managed certificates and
// redirects plain HTTP to it.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Serve ACME "http-01" challenges on port 80 and redirect everything
	// else to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:        ":443",
		Handler:     n,
		TLSConfig:   tlsConfig,
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// Ingestion and generation calls can run for minutes.
		WriteTimeout: 5 * time.Minute,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided by autocert.
	log.Fatal(err)
}

// ServeDevelopment serves plain HTTP, for local use.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
