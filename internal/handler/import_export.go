package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/keerthana777z/health-risk-demo/internal/importer"
	"github.com/keerthana777z/health-risk-demo/internal/middleware"
	"github.com/keerthana777z/health-risk-demo/internal/models"
	"github.com/keerthana777z/health-risk-demo/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportExportHandler moves health data in and out as files.
type ImportExportHandler struct {
	DB       *gorm.DB
	Importer *importer.Importer
}

func NewImportExportHandler(db *gorm.DB, im *importer.Importer) *ImportExportHandler {
	return &ImportExportHandler{DB: db, Importer: im}
}

// ImportCSV handles POST /api/health-data/import with a multipart
// "file" field. Parse failures and store failures report distinct
// messages; a store failure imports nothing.
func (h *ImportExportHandler) ImportCSV(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "no file uploaded")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot read uploaded file")
		return
	}
	defer f.Close()

	count, err := h.Importer.Import(user.ID, f)
	if err != nil {
		if importer.IsParseError(err) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
				"could not parse the file, check the required headers: date, wbc, rbc, hgb, hct, plt")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
				"failed to save health data, nothing was imported")
		}
		return
	}

	util.Success(c, util.Response{
		"message": fmt.Sprintf("%d records successfully uploaded", count),
		"count":   count,
	})
}

// ListHealthData returns the user's imported records, oldest first.
func (h *ImportExportHandler) ListHealthData(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	points, err := h.fetchPoints(user.ID, from, to)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load health data")
		return
	}

	items := make([]gin.H, 0, len(points))
	for i := range points {
		p := &points[i]
		items = append(items, gin.H{
			"id":          p.ID,
			"recorded_at": p.RecordedAt.Format("2006-01-02"),
			"wbc":         metricValue(p.WBC),
			"rbc":         metricValue(p.RBC),
			"hgb":         metricValue(p.HGB),
			"hct":         metricValue(p.HCT),
			"plt":         metricValue(p.PLT),
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// ExportCSV downloads the user's health data as CSV.
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	points, err := h.fetchPoints(user.ID, from, to)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load health data")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", exportName()))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"date", "wbc", "rbc", "hgb", "hct", "plt"})
	for i := range points {
		p := &points[i]
		writer.Write([]string{
			p.RecordedAt.Format("2006-01-02"),
			formatMetric(p.WBC),
			formatMetric(p.RBC),
			formatMetric(p.HGB),
			formatMetric(p.HCT),
			formatMetric(p.PLT),
		})
	}
}

// ExportXLSX downloads the user's health data as a spreadsheet.
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	points, err := h.fetchPoints(user.ID, from, to)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load health data")
		return
	}

	f := excelize.NewFile()
	sheetName := "Health Data"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Date", "WBC", "RBC", "HGB", "HCT", "PLT"}
	for i, name := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, name)
	}

	for idx := range points {
		p := &points[idx]
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.RecordedAt.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), metricValue(p.WBC))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), metricValue(p.RBC))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), metricValue(p.HGB))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), metricValue(p.HCT))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), metricValue(p.PLT))
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "F", 10)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", exportName()))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}

// dateRange reads the optional from/to query filters (YYYY-MM-DD).
func dateRange(c *gin.Context) (from, to string, err error) {
	from = c.Query("from")
	to = c.Query("to")
	if from != "" {
		if err := util.ValidateDate(from); err != nil {
			return "", "", fmt.Errorf("invalid 'from' date, expected YYYY-MM-DD")
		}
	}
	if to != "" {
		if err := util.ValidateDate(to); err != nil {
			return "", "", fmt.Errorf("invalid 'to' date, expected YYYY-MM-DD")
		}
	}
	return from, to, nil
}

// exportName builds a download name with a random suffix so repeated
// exports never collide in the user's download folder.
func exportName() string {
	suffix, err := util.RandomString(6)
	if err != nil {
		suffix = time.Now().Format("150405")
	}
	return fmt.Sprintf("health_data_%s_%s", time.Now().Format("20060102"), suffix)
}

func (h *ImportExportHandler) fetchPoints(userID uint, from, to string) ([]models.HealthDataPoint, error) {
	q := h.DB.Where("user_id = ?", userID)
	if from != "" {
		q = q.Where("recorded_at >= ?", from)
	}
	if to != "" {
		// inclusive upper bound, the column carries a time part
		q = q.Where("recorded_at < date(?, '+1 day')", to)
	}

	var points []models.HealthDataPoint
	err := q.Order("recorded_at ASC, id ASC").Find(&points).Error
	return points, err
}

// metricValue renders a nullable metric: null in JSON and an empty
// spreadsheet cell for values that never parsed on import.
func metricValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func formatMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
