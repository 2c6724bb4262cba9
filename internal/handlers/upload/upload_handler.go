// internal/handlers/upload/upload_handler.go
package upload

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"postsaathi-service/internal/domain/customer"
	"postsaathi-service/internal/domain/investment"
	"postsaathi-service/internal/middleware"
	"postsaathi-service/internal/pkg/response"
	customerService "postsaathi-service/internal/service/customer"
	investmentService "postsaathi-service/internal/service/investment"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var requiredColumns = []string{"Name", "Mobile", "Scheme", "Principal", "StartDate", "MaturityDate"}

type UploadHandler struct {
	customerService   *customerService.Service
	investmentService *investmentService.Service
	logger            *zap.Logger
}

func NewUploadHandler(
	customers *customerService.Service,
	investments *investmentService.Service,
	logger *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		customerService:   customers,
		investmentService: investments,
		logger:            logger,
	}
}

type bulkRow struct {
	Name         string
	Mobile       string
	Scheme       string
	Principal    decimal.Decimal
	StartDate    time.Time
	MaturityDate time.Time
}

type bulkResult struct {
	NewCustomers       int `json:"new_customers"`
	InvestmentsCreated int `json:"investments_created"`
	RowsSkipped        int `json:"rows_skipped"`
}

// BulkUpload ingests an Excel or CSV book of customers and investments.
// Customers are deduplicated by mobile within the agent's book; rows that
// fail to parse are skipped, not fatal.
func (h *UploadHandler) BulkUpload(c *gin.Context) {
	a := middleware.MustGetAgent(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ValidationError(c, "file is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read file", nil)
		return
	}
	defer file.Close()

	var records [][]string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		records, err = readCSV(file)
	case ".xlsx", ".xls":
		records, err = readExcel(file)
	default:
		response.Error(c, http.StatusBadRequest, "invalid file format, use Excel or CSV", nil)
		return
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not parse file", err)
		return
	}

	rows, skipped, err := parseRecords(records)
	if err != nil {
		response.ValidationError(c, err.Error(), nil)
		return
	}

	result := bulkResult{RowsSkipped: skipped}

	// Existing customers come back decrypted, so mobiles compare directly.
	existing, err := h.customerService.List(c.Request.Context(), a.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load existing customers", nil)
		return
	}
	mobileToCustomer := make(map[string]string, len(existing))
	for _, cust := range existing {
		mobileToCustomer[cust.Mobile] = cust.ID
	}

	for _, row := range rows {
		customerID, ok := mobileToCustomer[row.Mobile]
		if !ok {
			created, err := h.customerService.Create(c.Request.Context(), a.ID, customer.CreateCustomerRequest{
				FullName:    row.Name,
				Mobile:      row.Mobile,
				ConsentFlag: false,
			})
			if err != nil {
				h.logger.Warn("bulk upload: failed to create customer", zap.Error(err))
				result.RowsSkipped++
				continue
			}
			customerID = created.ID
			mobileToCustomer[row.Mobile] = customerID
			result.NewCustomers++
		}

		_, err := h.investmentService.Create(c.Request.Context(), a.ID, investment.CreateInvestmentRequest{
			CustomerID:   customerID,
			SchemeType:   row.Scheme,
			Principal:    row.Principal,
			StartDate:    row.StartDate,
			MaturityDate: row.MaturityDate,
		})
		if err != nil {
			h.logger.Warn("bulk upload: failed to create investment", zap.Error(err))
			result.RowsSkipped++
			continue
		}
		result.InvestmentsCreated++
	}

	response.Success(c, http.StatusCreated, "upload processed", result)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readExcel(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return book.GetRows(sheets[0])
}

// parseRecords validates the header and converts data rows. Rows that fail
// to parse are counted, not fatal; a missing required column is.
func parseRecords(records [][]string) ([]bulkRow, int, error) {
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("file is empty")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, 0, fmt.Errorf("missing column %q, required: %s", required, strings.Join(requiredColumns, ", "))
		}
	}

	var (
		rows    []bulkRow
		skipped int
	)
	for _, record := range records[1:] {
		row, err := parseRow(record, columns)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseRow(record []string, columns map[string]int) (bulkRow, error) {
	cell := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	principal, err := decimal.NewFromString(cell("Principal"))
	if err != nil {
		return bulkRow{}, fmt.Errorf("bad principal: %w", err)
	}
	startDate, err := parseDate(cell("StartDate"))
	if err != nil {
		return bulkRow{}, fmt.Errorf("bad start date: %w", err)
	}
	maturityDate, err := parseDate(cell("MaturityDate"))
	if err != nil {
		return bulkRow{}, fmt.Errorf("bad maturity date: %w", err)
	}

	row := bulkRow{
		Name:         cell("Name"),
		Mobile:       cell("Mobile"),
		Scheme:       cell("Scheme"),
		Principal:    principal,
		StartDate:    startDate,
		MaturityDate: maturityDate,
	}
	if row.Name == "" || row.Mobile == "" {
		return bulkRow{}, fmt.Errorf("name and mobile are required")
	}
	return row, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-06",
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
