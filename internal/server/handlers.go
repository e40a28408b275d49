// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/pubsum/internal/session"
	"github.com/pdiddy/pubsum/pkg/types"
)

// errorResponse is the body of every 4xx/5xx that is not a notice list.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, msg string) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: msg}}
}

// resultResponse carries a record set and the notices that produced it.
type resultResponse struct {
	Records   types.RecordSet  `json:"records"`
	Notices   []session.Notice `json:"notices"`
	Author    string           `json:"author,omitempty"`
	StartYear int              `json:"start_year,omitempty"`
	EndYear   int              `json:"end_year,omitempty"`
}

type publicationsRequest struct {
	Author  string          `json:"author" binding:"required"`
	Source  string          `json:"source" binding:"omitempty,oneof=dataset external"`
	Refresh bool            `json:"refresh"`
	Dataset types.RecordSet `json:"dataset"`
}

type filterRequest struct {
	Records types.RecordSet `json:"records" binding:"required"`
	Start   *int            `json:"start"`
	End     *int            `json:"end"`
}

type exportRequest struct {
	Records types.RecordSet `json:"records" binding:"required"`
}

// api adapts session handlers to gin. The HTTP shell keeps no state:
// each request carries the records it operates on.
type api struct {
	h       *session.Handlers
	metrics *Metrics
}

func (a *api) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("bad_request", "multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("too_large", err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}

	st, notices := a.h.Upload(c.Request.Context(), a.h.NewState(), fh.Filename, data)
	a.metrics.upload(!session.HasError(notices))
	c.JSON(http.StatusOK, resultResponse{Records: orEmpty(st.Dataset), Notices: notices})
}

func (a *api) publications(c *gin.Context) {
	var req publicationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation", err.Error()))
		return
	}
	source, err := session.ParseSource(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation", err.Error()))
		return
	}

	st := a.h.NewState()
	st.Dataset = req.Dataset
	var notices []session.Notice
	if req.Refresh && source == session.SourceExternal {
		st, notices = a.h.RefreshPublications(c.Request.Context(), st, req.Author)
	} else {
		st, notices = a.h.GetPublications(c.Request.Context(), st, req.Author, source)
	}
	c.JSON(http.StatusOK, resultResponse{
		Records: orEmpty(st.Publications),
		Notices: notices,
		Author:  st.AuthorName,
	})
}

func (a *api) filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation", err.Error()))
		return
	}
	st := a.h.NewState()
	start, end := st.StartYear, st.EndYear
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}
	st.Publications = req.Records
	st.HasPublications = true

	st, out, notices := a.h.FilterYears(st, start, end)
	c.JSON(http.StatusOK, resultResponse{
		Records:   orEmpty(out),
		Notices:   notices,
		StartYear: st.StartYear,
		EndYear:   st.EndYear,
	})
}

// export returns a handler that renders the posted records with render.
func (a *api) export(format string, render func(types.RecordSet) (session.Download, []session.Notice)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req exportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("validation", err.Error()))
			return
		}
		dl, notices := render(req.Records)
		if session.HasError(notices) {
			c.JSON(http.StatusInternalServerError, resultResponse{Records: types.RecordSet{}, Notices: notices})
			return
		}
		a.metrics.export(format)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
		c.Data(http.StatusOK, dl.MIME, dl.Data)
	}
}

func health(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
	}
}

func orEmpty(rs types.RecordSet) types.RecordSet {
	if rs == nil {
		return types.RecordSet{}
	}
	return rs
}
