package main

// Swagger metadata consumed by `swag init -g cmd/polymaster/docs.go`.

// @title PolyMaster API
// @version 1.0
// @description Prediction-market trading assistant: market catalog, LLM forecasts, edge detection and order submission.
// @BasePath /
