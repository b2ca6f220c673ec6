package service

import "errors"

var (
	ErrPlanNotFound   = errors.New("plan not found")
	ErrReportNotFound = errors.New("report not found")
)
