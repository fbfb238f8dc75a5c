package main

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	radoncontext "radon-engine/internal/radon/context"
	"radon-engine/internal/radon/metrics"
	"radon-engine/internal/radon/stage"
	"radon-engine/internal/radon/value"
	"radon-engine/pkg/config"
)

type handler struct {
	cfg    *config.Config
	runner *stage.Runner
}

func newHandler(cfg *config.Config) (*handler, error) {
	ctx := radoncontext.Context{
		ActiveWips:              radoncontext.NewActiveWips(cfg.Engine.ActiveWips),
		AverageMeanReturnPolicy: cfg.Engine.AverageMeanReturnPolicy,
	}
	maxCalls, maxDepth, maxStringBytes := cfg.Engine.MaxScriptCalls, cfg.Engine.MaxRecursionDepth, cfg.Engine.MaxStringBytes
	if maxCalls == 0 {
		maxCalls = 64
	}
	if maxDepth == 0 {
		maxDepth = 8
	}
	if maxStringBytes == 0 {
		maxStringBytes = 65535
	}
	runner, err := stage.New(maxCalls, maxDepth, maxStringBytes, 256, ctx, logrus.StandardLogger())
	if err != nil {
		return nil, err
	}
	return &handler{cfg: cfg, runner: runner}, nil
}

// sourceRequest is the wire shape of one retrieve source: a hex-encoded
// CBOR script and a JSON literal seed value.
type sourceRequest struct {
	ScriptHex string          `json:"script_hex"`
	Seed      json.RawMessage `json:"seed"`
}

type executeRequest struct {
	Sources           []sourceRequest `json:"sources"`
	AggregateScriptHex string         `json:"aggregate_script_hex"`
	TallyScriptHex     string         `json:"tally_script_hex"`
}

type executeResponse struct {
	ExecutionID    string `json:"execution_id"`
	TallyResult    string `json:"tally_result"`
	Failed         bool   `json:"failed"`
	ConsensusRatio float64 `json:"consensus_ratio"`
}

func (h *handler) execute(w http.ResponseWriter, r *http.Request) {
	executionID := uuid.New()
	started := time.Now()

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sources := make([]stage.Source, len(req.Sources))
	for i, s := range req.Sources {
		scriptBytes, err := hex.DecodeString(s.ScriptHex)
		if err != nil {
			http.Error(w, "invalid script_hex at source "+strconv.Itoa(i), http.StatusBadRequest)
			return
		}
		seed, err := value.NewMixedFromJSON(s.Seed)
		if err != nil {
			http.Error(w, "invalid seed at source "+strconv.Itoa(i), http.StatusBadRequest)
			return
		}
		sources[i] = stage.Source{Script: scriptBytes, Seed: seed}
	}

	aggregateScript, err := hex.DecodeString(req.AggregateScriptHex)
	if err != nil {
		http.Error(w, "invalid aggregate_script_hex", http.StatusBadRequest)
		return
	}
	tallyScript, err := hex.DecodeString(req.TallyScriptHex)
	if err != nil {
		http.Error(w, "invalid tally_script_hex", http.StatusBadRequest)
		return
	}

	outcome, err := h.runner.Run(stage.Request{
		Sources:         sources,
		AggregateScript: aggregateScript,
		TallyScript:     tallyScript,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.Observe(value.StageTally, outcome.TallyReport.Result, time.Since(started).Seconds())

	logrus.WithFields(logrus.Fields{
		"execution_id": executionID,
		"stage":        "tally",
		"failed":       outcome.TallyReport.Failed(),
	}).Debug("execute request complete")

	resp := executeResponse{
		ExecutionID:    executionID.String(),
		TallyResult:    outcome.TallyReport.Result.String(),
		Failed:         outcome.TallyReport.Failed(),
		ConsensusRatio: outcome.ConsensusRatio,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
