package authsvc

import "net/http"

// NewMux wires the auth service's three routes onto a fresh ServeMux.
func NewMux(state *State) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /exchange", state.handleExchange)
	mux.HandleFunc("POST /exchange-server", state.handleExchangeServer)
	mux.HandleFunc("GET /public-key", state.handlePublicKey)
	return mux
}
