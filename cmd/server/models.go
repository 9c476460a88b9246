package main

import (
	"github.com/liamcoop/numclass/numbers"
	"github.com/liamcoop/numclass/rules"
)

// API Response Models with Swagger annotations

// ClassifyResponse is the classification record for one number
type ClassifyResponse = numbers.Result // @name ClassifyResponse

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid input - non-numeric value"`
	Number  string `json:"number,omitempty" example:"abc"`
	Details string `json:"details,omitempty"`
} // @name ErrorResponse

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Policy   string `json:"policy" example:"cel"`
	FunFacts bool   `json:"funFacts" example:"true"`
	Uptime   string `json:"uptime" example:"1h2m3s"`
} // @name HealthResponse

// MetricsResponse exposes request and lookup counters
type MetricsResponse struct {
	Counters map[string]int64 `json:"counters"`
	Uptime   string           `json:"uptime" example:"1h2m3s"`
} // @name MetricsResponse

// PropertiesResponse lists the active property rules in evaluation order
type PropertiesResponse struct {
	Policy string        `json:"policy" example:"cel"`
	Rules  []*rules.Rule `json:"rules"`
} // @name PropertiesResponse

// CreatePropertyRequest represents the request body for adding a property rule
type CreatePropertyRequest struct {
	Name       string `json:"name" example:"lucky" binding:"required"`
	Expression string `json:"expression" example:"digit_sum == 7" binding:"required"`
	Priority   int    `json:"priority" example:"10"`
	Active     *bool  `json:"active,omitempty" example:"true"`
} // @name CreatePropertyRequest

// UpdatePropertyRequest represents the request body for changing a property rule
type UpdatePropertyRequest struct {
	Name       string `json:"name" example:"lucky"`
	Expression string `json:"expression" example:"digit_sum == 7"`
	Priority   *int   `json:"priority,omitempty" example:"10"`
	Active     *bool  `json:"active,omitempty" example:"true"`
} // @name UpdatePropertyRequest

// EvaluatePropertyResponse is the outcome of one rule against one number
type EvaluatePropertyResponse struct {
	RuleID  string  `json:"ruleId" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name    string  `json:"name" example:"lucky"`
	Number  float64 `json:"number" example:"16"`
	Matched bool    `json:"matched" example:"true"`
} // @name EvaluatePropertyResponse
