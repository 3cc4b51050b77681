package hostapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"subnode/internal/history"
	"subnode/internal/logging"
	"subnode/internal/node"
	"subnode/internal/pipeline"
	"subnode/internal/services"
)

const maxRunBodyBytes = 1 << 20

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "nodes": len(s.registry.List())})
}

func (s *Server) handleListNodes(c *gin.Context) {
	regs := s.registry.List()
	infos := make([]NodeInfo, 0, len(regs))
	for _, reg := range regs {
		infos = append(infos, Describe(reg))
	}
	c.JSON(http.StatusOK, NodeListResponse{Nodes: infos})
}

func (s *Server) handleGetNode(c *gin.Context) {
	reg, ok := s.registry.Lookup(c.Param("id"))
	if !ok {
		s.writeError(c, http.StatusNotFound, ErrorBody{Kind: "not_found", Message: "node not registered"})
		return
	}
	c.JSON(http.StatusOK, Describe(reg))
}

func (s *Server) handleRunNode(c *gin.Context) {
	reg, ok := s.registry.Lookup(c.Param("id"))
	if !ok {
		s.writeError(c, http.StatusNotFound, ErrorBody{Kind: "not_found", Message: "node not registered"})
		return
	}

	req, err := decodeRunRequest(c)
	if err != nil {
		s.writeError(c, http.StatusBadRequest, ErrorBody{Kind: services.KindValidation, Message: err.Error()})
		return
	}

	ctx := c.Request.Context()
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("node run requested",
		logging.String(logging.FieldEventType, "node_run"),
		logging.String("node", reg.ID),
	)
	adapter := node.NewDictAdapter(reg.Node)
	tuple, err := adapter.Process(ctx, req.Inputs)
	if err != nil {
		status, body := classify(err)
		s.writeError(c, status, body)
		return
	}
	outputs := make(node.Outputs, len(tuple))
	for i, spec := range reg.Node.DescribeOutputs() {
		outputs[spec.Name] = tuple[i]
	}
	c.JSON(http.StatusOK, RunResponse{
		RequestID: c.GetString(requestIDKey),
		Outputs:   outputs,
		Result:    tuple,
	})
}

func (s *Server) handleListJobs(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, JobListResponse{Jobs: []JobView{}})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(c, http.StatusBadRequest, ErrorBody{Kind: services.KindValidation, Message: "invalid limit"})
			return
		}
		limit = parsed
	}
	var statuses []history.Status
	for _, value := range c.QueryArray("status") {
		if value != "" {
			statuses = append(statuses, history.Status(value))
		}
	}
	records, err := s.history.List(c.Request.Context(), limit, statuses...)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, ErrorBody{Kind: services.KindIO, Message: err.Error()})
		return
	}
	views := make([]JobView, 0, len(records))
	for _, record := range records {
		views = append(views, NewJobView(record))
	}
	c.JSON(http.StatusOK, JobListResponse{Jobs: views})
}

func (s *Server) handleGetJob(c *gin.Context) {
	if s.history == nil {
		s.writeError(c, http.StatusNotFound, ErrorBody{Kind: "not_found", Message: "job history disabled"})
		return
	}
	record, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(c, http.StatusNotFound, ErrorBody{Kind: "not_found", Message: "job not found"})
		return
	}
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, ErrorBody{Kind: services.KindIO, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, NewJobView(record))
}

func decodeRunRequest(c *gin.Context) (RunRequest, error) {
	var req RunRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRunBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		return req, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// Describe renders a registration in its wire form.
func Describe(reg node.Registration) NodeInfo {
	adapter := node.NewDictAdapter(reg.Node)
	return NodeInfo{
		ID:          reg.ID,
		DisplayName: reg.DisplayName,
		Function:    adapter.Function(),
		Inputs:      reg.Node.DescribeInputs(),
		Outputs:     reg.Node.DescribeOutputs(),
		InputTypes:  adapter.InputTypes(),
		ReturnTypes: adapter.ReturnTypes(),
	}
}

// NewErrorBody describes err with its kind, stage and command outcome.
func NewErrorBody(err error) ErrorBody {
	body := ErrorBody{Kind: services.Kind(err), Message: err.Error()}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		body.Stage = stageErr.Stage
	} else {
		body.Stage = services.StageOf(err)
	}
	if result, ok := services.CommandOf(err); ok {
		code := result.ExitCode
		body.ExitCode = &code
		body.StderrTail = result.StderrTail(5)
	}
	return body
}

// classify maps a node failure to an HTTP status and body.
func classify(err error) (int, ErrorBody) {
	body := NewErrorBody(err)
	switch body.Kind {
	case services.KindValidation:
		return http.StatusBadRequest, body
	case services.KindMediaRead:
		return http.StatusUnprocessableEntity, body
	case services.KindTranscription, services.KindEncode:
		return http.StatusBadGateway, body
	}
	return http.StatusInternalServerError, body
}

func (s *Server) writeError(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.GetString(requestIDKey),
		Error:     body,
	})
}
