// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package query

import (
	"net/http"
	"strconv"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/cors"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/internal/broadcasts"
	"github.com/botcash/go-bsp/ledger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// API is the read-only HTTP surface plus the websocket block stream.
type API struct {
	rd     *Reader
	bcast  *broadcasts.BlockUpdates
	logger kitlog.Logger

	upgrader websocket.Upgrader
}

// NewAPI builds the handler set. bcast may be nil; the websocket
// endpoint then refuses connections.
func NewAPI(logger kitlog.Logger, rd *Reader, bcast *broadcasts.BlockUpdates) *API {
	return &API{
		rd:     rd,
		bcast:  bcast,
		logger: kitlog.With(logger, "unit", "api"),
		upgrader: websocket.Upgrader{
			// read-only data, same-origin enforcement adds nothing
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the routed and CORS-wrapped handler.
func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/status", api.status)
	mux.HandleFunc("/v1/feed/", api.feed)
	mux.HandleFunc("/v1/profile/", api.profile)
	mux.HandleFunc("/v1/post/", api.post)
	mux.HandleFunc("/v1/credit/", api.credit)
	mux.HandleFunc("/v1/channel/", api.channel)
	mux.HandleFunc("/v1/proposal/", api.proposal)
	mux.HandleFunc("/v1/proposals", api.proposals)
	mux.HandleFunc("/v1/recovery/", api.recovery)
	mux.HandleFunc("/v1/bridges/", api.bridges)
	mux.HandleFunc("/v1/reports/", api.reports)
	mux.HandleFunc("/v1/karma/", api.karma)
	mux.HandleFunc("/v1/blocks", api.blocks)
	return cors.AllowAll().Handler(mux)
}

func pathArg(r *http.Request, route string) string {
	return strings.TrimPrefix(r.URL.Path, route)
}

func (api *API) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Debug(api.logger).Log("event", "write-failed", "err", err)
	}
}

func (api *API) writeErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// tipHeight is the checkpoint height queries evaluate against.
func (api *API) tipHeight(w http.ResponseWriter) (bsp.Height, bool) {
	cp, found, err := api.rd.ldg.Checkpoint()
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return 0, false
	}
	if !found {
		api.writeErr(w, http.StatusServiceUnavailable, "no blocks indexed yet")
		return 0, false
	}
	return cp.Height, true
}

func (api *API) status(w http.ResponseWriter, r *http.Request) {
	cp, found, err := api.rd.ldg.Checkpoint()
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.writeJSON(w, map[string]interface{}{
		"synced": found,
		"height": cp.Height,
		"hash":   cp.Hash,
	})
}

func (api *API) feed(w http.ResponseWriter, r *http.Request) {
	addr := bsp.Address(pathArg(r, "/v1/feed/"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := api.rd.Feed(addr, limit)
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.writeJSON(w, items)
}

func (api *API) profile(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := api.rd.Profile(bsp.Address(pathArg(r, "/v1/profile/")))
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		api.writeErr(w, http.StatusNotFound, "no such profile")
		return
	}
	api.writeJSON(w, rec)
}

func (api *API) post(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := api.rd.Post(bsp.TxID(pathArg(r, "/v1/post/")))
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		api.writeErr(w, http.StatusNotFound, "no such content")
		return
	}
	api.writeJSON(w, rec)
}

func (api *API) credit(w http.ResponseWriter, r *http.Request) {
	h, ok := api.tipHeight(w)
	if !ok {
		return
	}
	addr := bsp.Address(pathArg(r, "/v1/credit/"))
	bal, err := api.rd.CreditBalance(addr, h)
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.writeJSON(w, map[string]interface{}{"address": addr, "credit_zat": bal, "height": h})
}

func (api *API) channel(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := api.rd.ChannelStatus(pathArg(r, "/v1/channel/"))
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		api.writeErr(w, http.StatusNotFound, "no such channel")
		return
	}
	api.writeJSON(w, rec)
}

func (api *API) proposal(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := api.rd.Proposal(pathArg(r, "/v1/proposal/"))
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		api.writeErr(w, http.StatusNotFound, "no such proposal")
		return
	}
	api.writeJSON(w, rec)
}

func (api *API) proposals(w http.ResponseWriter, r *http.Request) {
	status := ledger.ProposalStatus(r.URL.Query().Get("status"))
	switch status {
	case "", ledger.ProposalActive, ledger.ProposalPassed, ledger.ProposalRejected, ledger.ProposalQuorumFailed:
	default:
		api.writeErr(w, http.StatusBadRequest, "unknown proposal status")
		return
	}
	list, err := api.rd.Proposals(status)
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []ProposalInfo{}
	}
	api.writeJSON(w, list)
}

func (api *API) recovery(w http.ResponseWriter, r *http.Request) {
	owner := bsp.Address(pathArg(r, "/v1/recovery/"))
	st, err := api.rd.Recovery(owner, r.URL.Query().Get("request"))
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.writeJSON(w, st)
}

func (api *API) bridges(w http.ResponseWriter, r *http.Request) {
	links, err := api.rd.BridgeLinks(bsp.Address(pathArg(r, "/v1/bridges/")))
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.writeJSON(w, links)
}

func (api *API) reports(w http.ResponseWriter, r *http.Request) {
	h, ok := api.tipHeight(w)
	if !ok {
		return
	}
	reps, err := api.rd.Reports(bsp.TxID(pathArg(r, "/v1/reports/")), h)
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.writeJSON(w, reps)
}

func (api *API) karma(w http.ResponseWriter, r *http.Request) {
	addr := bsp.Address(pathArg(r, "/v1/karma/"))
	k, err := api.rd.Karma(addr)
	if err != nil {
		api.writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.writeJSON(w, map[string]interface{}{"address": addr, "karma": k})
}

// blocks streams one JSON BlockUpdate per applied or reversed block
// over a websocket.
func (api *API) blocks(w http.ResponseWriter, r *http.Request) {
	if api.bcast == nil {
		api.writeErr(w, http.StatusNotImplemented, "block stream disabled")
		return
	}
	conn, err := api.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Debug(api.logger).Log("event", "ws-upgrade-failed", "err", err)
		return
	}

	var sink broadcasts.BlockUpdater = broadcasts.FuncUpdater(func(u broadcasts.BlockUpdate) error {
		return conn.WriteJSON(u)
	})
	cancel := api.bcast.Register(&sink)

	// the read loop only exists to notice the peer going away
	go func() {
		defer cancel()
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
