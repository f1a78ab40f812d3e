// Package resultapi serves ingestion, listing, distribution and
// comparison of the current result set over HTTP.
package resultapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"caption-eval-compare/backend/internal/coreengine/comparison"
	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/datastore"
	"caption-eval-compare/backend/internal/ingest"
)

const maxUpload = 64 << 20

// Defaults fill in the unit and correction metric a request leaves empty.
type Defaults struct {
	DelayUnit        distribution.Unit
	CorrectionMetric resultset.CorrectionMetric
}

type Handler struct {
	Ingester *ingest.Ingester
	Store    *datastore.SessionStore
	Defaults Defaults
	Log      logrus.FieldLogger
}

func NewHandler(in *ingest.Ingester, store *datastore.SessionStore, d Defaults, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{Ingester: in, Store: store, Defaults: d, Log: log}
}

// CompareRequest selects results to compare by key.
type CompareRequest struct {
	Files  []string `json:"files" binding:"required"`
	Unit   string   `json:"unit"`
	Metric string   `json:"metric"`
}

// ResultEntry describes one result of the current session.
type ResultEntry struct {
	Key      string            `json:"key" yaml:"key"`
	RunID    string            `json:"run_id" yaml:"run_id"`
	Category string            `json:"category" yaml:"category"`
	Job      string            `json:"job" yaml:"job"`
	JobType  resultset.JobType `json:"job_type" yaml:"job_type"`
}

// DistributionResponse is the body of GET /api/distributions/:category.
type DistributionResponse struct {
	Category resultset.JobType    `json:"category" yaml:"category"`
	YLabel   string               `json:"yLabel" yaml:"yLabel"`
	Groups   []distribution.Group `json:"groups" yaml:"groups"`
}

// IngestBodyHandler accepts a raw result set document in the request body.
func (h *Handler) IngestBodyHandler(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	raw, err := resultset.ParseRawResultSet(body)
	if err != nil {
		h.fail(c, err)
		return
	}
	sess, err := h.Ingester.Accept("upload", raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess.Info())
}

// IngestNamedHandler loads :name from the configured source.
func (h *Handler) IngestNamedHandler(c *gin.Context) {
	sess, err := h.Ingester.Ingest(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess.Info())
}

func (h *Handler) SessionHandler(c *gin.Context) {
	sess, err := h.Store.Current()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Info())
}

// ListResultsHandler lists results in collection order.
func (h *Handler) ListResultsHandler(c *gin.Context) {
	sess, err := h.Store.Current()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Entries(sess.Results))
}

// DistributionHandler returns one sample group per run of :category.
func (h *Handler) DistributionHandler(c *gin.Context) {
	sess, err := h.Store.Current()
	if err != nil {
		h.fail(c, err)
		return
	}
	category, err := resultset.ParseJobType(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	opts, err := h.options(category, c.Query("unit"), c.Query("metric"))
	if err != nil {
		h.fail(c, err)
		return
	}
	groups, err := distribution.Extract(sess.Results, category, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DistributionResponse{
		Category: category,
		YLabel:   opts.AxisLabel(category, ""),
		Groups:   groups,
	})
}

func (h *Handler) DifferentialHandler(c *gin.Context) {
	set, req, opts, ok := h.compareInput(c)
	if !ok {
		return
	}
	res, err := comparison.CompareDifferential(set, req.Files, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AnovaHandler(c *gin.Context) {
	set, req, opts, ok := h.compareInput(c)
	if !ok {
		return
	}
	res, err := comparison.CompareAnova(set, req.Files, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) compareInput(c *gin.Context) (*resultset.ResultSet, CompareRequest, distribution.Options, bool) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return nil, req, distribution.Options{}, false
	}
	sess, err := h.Store.Current()
	if err != nil {
		h.fail(c, err)
		return nil, req, distribution.Options{}, false
	}

	// The unit default depends on the job type; unknown keys are reported
	// by the comparison itself.
	var jt resultset.JobType
	if len(req.Files) > 0 {
		if r, ok := sess.Results.Get(req.Files[0]); ok {
			jt = r.Record.JobType
		}
	}
	opts, err := h.options(jt, req.Unit, req.Metric)
	if err != nil {
		h.fail(c, err)
		return nil, req, distribution.Options{}, false
	}
	return sess.Results, req, opts, true
}

func (h *Handler) options(jt resultset.JobType, unit, metric string) (distribution.Options, error) {
	opts, err := distribution.ParseOptions(unit, metric)
	if err != nil {
		return distribution.Options{}, err
	}
	if unit == "" && jt == resultset.JobTypeDelay && h.Defaults.DelayUnit != "" {
		opts.Unit = h.Defaults.DelayUnit
	}
	if metric == "" && h.Defaults.CorrectionMetric != "" {
		opts.CorrectionMetric = h.Defaults.CorrectionMetric
	}
	return opts, nil
}

// Entries lists a result set in collection order.
func Entries(set *resultset.ResultSet) []ResultEntry {
	all := set.All()
	out := make([]ResultEntry, 0, len(all))
	for _, r := range all {
		out = append(out, ResultEntry{
			Key:      r.Key,
			RunID:    r.RunID,
			Category: r.Category,
			Job:      r.Record.Job,
			JobType:  r.Record.JobType,
		})
	}
	return out
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)
	body, err := c.GetRawData()
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", resultset.ErrMalformedInput, err)
	}
	return body, nil
}
