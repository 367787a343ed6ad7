// README: Holiday handlers: read and replace one year's calendar (admin).
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petcare/internal/modules/holiday"
)

type HolidayService interface {
	List(ctx context.Context, year int) ([]holiday.Holiday, error)
	Replace(ctx context.Context, year int, days []holiday.DayInput) ([]holiday.Holiday, error)
}

type HolidayHandler struct {
	svc HolidayService
}

func NewHolidayHandler(svc HolidayService) *HolidayHandler {
	return &HolidayHandler{svc: svc}
}

type holidayYearResp struct {
	Year     int                `json:"year"`
	Holidays []holiday.DayInput `json:"holidays"`
}

type replaceHolidaysReq struct {
	Holidays []holiday.DayInput `json:"holidays"`
}

func (h *HolidayHandler) Get(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	days, err := h.svc.List(c.Request.Context(), year)
	if err != nil {
		writeHolidayError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toYearResp(year, days))
}

func (h *HolidayHandler) Put(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	var req replaceHolidaysReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	days, err := h.svc.Replace(c.Request.Context(), year, req.Holidays)
	if err != nil {
		writeHolidayError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toYearResp(year, days))
}

func yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return year, true
}

func toYearResp(year int, days []holiday.Holiday) holidayYearResp {
	out := holidayYearResp{Year: year, Holidays: make([]holiday.DayInput, 0, len(days))}
	for _, d := range days {
		out.Holidays = append(out.Holidays, holiday.DayInput{Date: d.Day(), Name: d.Name})
	}
	return out
}
