// Copyright 2026 Peter Edge
//
// All rights reserved.

package tradectlserver

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/bufdev/tradectl/internal/pkg/brokercsv"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlimport"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlmatch"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlstore"
	"github.com/bufdev/tradectl/internal/tradectl/tradectltranslate"
	"github.com/gin-gonic/gin"
)

const (
	// formFieldFile is the multipart field holding the export.
	formFieldFile = "file"
	// formFieldAccount is the multipart field holding the selected account.
	formFieldAccount = "cuenta_id"
	// multipartOverhead is allowed on top of the export size limit for
	// multipart framing and other form fields.
	multipartOverhead = 1 << 20
	// formatUnknown labels imports that failed before format detection.
	formatUnknown = "unknown"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type importResponse struct {
	Success    bool                         `json:"success"`
	Trades     []tradectlmatch.MatchedTrade `json:"operaciones"`
	Total      int                          `json:"total"`
	Saved      int                          `json:"guardadas"`
	Duplicates int                          `json:"duplicadas"`
}

type listTradesResponse struct {
	Success bool                        `json:"success"`
	Trades  []tradectlstore.StoredTrade `json:"operaciones"`
	Total   int                         `json:"total"`
}

func (s *server) handleImport(c *gin.Context) {
	ctx := c.Request.Context()
	// Cap the request body at the export limit plus room for multipart framing.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBytes+multipartOverhead)
	fileHeader, err := c.FormFile(formFieldFile)
	if err != nil {
		s.metrics.observeImportError(formatUnknown)
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			writeError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds the maximum size of %d bytes", s.maxBytes))
			return
		}
		writeError(c, http.StatusBadRequest, fmt.Errorf("missing %q file field: %w", formFieldFile, err))
		return
	}
	// Read the export with the configured limits.
	table, err := readUpload(fileHeader, brokercsv.ReadWithMaxBytes(s.maxBytes), brokercsv.ReadWithMaxRows(s.maxRows))
	if err != nil {
		s.metrics.observeImportError(formatUnknown)
		writeError(c, importErrorStatus(err), err)
		return
	}
	// Import with a fresh importer, filling empty accounts with the selected one.
	importer := tradectlimport.NewImporter(s.logger, tradectlimport.ImporterWithAccount(c.PostForm(formFieldAccount)))
	result, err := importer.Import(ctx, table)
	if err != nil {
		s.metrics.observeImportError(tradectltranslate.DetectFormat(table.Header).String())
		writeError(c, importErrorStatus(err), err)
		return
	}
	// Save the matched trades, skipping ones already stored.
	saveResult, err := s.store.SaveTrades(ctx, result.Trades)
	if err != nil {
		s.metrics.observeImportError(result.Format.String())
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	s.metrics.observeImport(result.Format.String(), result.Stats)
	s.metrics.tradesDuplicate.Add(float64(saveResult.Duplicates))
	// Always respond with a list, even when nothing matched.
	trades := result.Trades
	if trades == nil {
		trades = []tradectlmatch.MatchedTrade{}
	}
	c.JSON(http.StatusOK, importResponse{
		Success:    true,
		Trades:     trades,
		Total:      len(trades),
		Saved:      saveResult.Inserted,
		Duplicates: saveResult.Duplicates,
	})
}

func (s *server) handleListTrades(c *gin.Context) {
	filter := tradectlstore.TradeFilter{
		Account:    c.Query("account"),
		Instrument: c.Query("instrument"),
	}
	if limitString := c.Query("limit"); limitString != "" {
		limit, err := strconv.Atoi(limitString)
		if err != nil || limit < 0 {
			writeError(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", limitString))
			return
		}
		filter.Limit = limit
	}
	storedTrades, err := s.store.ListTrades(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, listTradesResponse{
		Success: true,
		Trades:  storedTrades,
		Total:   len(storedTrades),
	})
}

func readUpload(fileHeader *multipart.FileHeader, options ...brokercsv.ReadOption) (_ *brokercsv.Table, retErr error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	return brokercsv.Read(file, options...)
}

// importErrorStatus maps an import error to its HTTP status.
//
// Every import error other than an oversized upload is a problem with the
// uploaded file: empty input, an unrecognized format, or malformed CSV.
func importErrorStatus(err error) int {
	if errors.Is(err, brokercsv.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, errorResponse{
		Success: false,
		Error:   err.Error(),
	})
}
