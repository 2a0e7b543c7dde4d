package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"accpipeline/blacklist"
	"accpipeline/pipeline"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func sendError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func (s *Server) handleHealth(c *gin.Context) {
	health := gin.H{"status": "ok"}
	if s.db != nil {
		if _, err := s.db.AgentCounts(1); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "ok"
	}
	c.JSON(http.StatusOK, health)
}

// TransformRequest names paths on the server's filesystem. The service
// runs next to the workbooks it processes.
type TransformRequest struct {
	InputPath  string `json:"input_path" binding:"required"`
	OutputPath string `json:"output_path" binding:"required"`
	CSVPath    string `json:"csv_path"`
}

func (s *Server) handleTransform(c *gin.Context) {
	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "input_path and output_path are required")
		return
	}

	result, err := s.runner.PrepareInput(c.Request.Context(), pipeline.PrepareRequest{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		CSVPath:    req.CSVPath,
	})
	if err != nil {
		sendError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// MatchRequest names the workbooks for the report stage.
type MatchRequest struct {
	InputPath   string `json:"input_path" binding:"required"`
	ResultsPath string `json:"results_path" binding:"required"`
	ReportPath  string `json:"report_path" binding:"required"`
}

func (s *Server) handleMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "input_path, results_path and report_path are required")
		return
	}

	result, err := s.runner.BuildMatchReport(c.Request.Context(), pipeline.ReportRequest{
		InputPath:   req.InputPath,
		ResultsPath: req.ResultsPath,
		ReportPath:  req.ReportPath,
	})
	if err != nil {
		sendError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSuggestions(c *gin.Context) {
	if s.db == nil {
		sendError(c, http.StatusServiceUnavailable, "tracker database is not configured")
		return
	}

	approved, err := s.db.ApprovedBlacklistNames()
	if err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Sprintf("load approved blacklist: %v", err))
		return
	}
	current := blacklist.NewSet(approved)

	suggestions, err := s.runner.Suggestions(current)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if suggestions == nil {
		suggestions = []blacklist.Suggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ApproveRequest adds one name to the approved blacklist.
type ApproveRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleApprove(c *gin.Context) {
	if s.db == nil {
		sendError(c, http.StatusServiceUnavailable, "tracker database is not configured")
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.db.ApproveBlacklistName(req.Name); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": req.Name})
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.db == nil {
		sendError(c, http.StatusServiceUnavailable, "tracker database is not configured")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			sendError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	checkpoints, err := s.db.RecentRunCheckpoints(limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": checkpoints})
}
