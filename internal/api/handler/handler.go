package handler

import (
	"nagarseva/backend/internal/analysis"
	"nagarseva/backend/internal/push"
	"nagarseva/backend/internal/storage"
	"nagarseva/backend/internal/submission"
)

// Handler carries the wired core services for the HTTP surface.
type Handler struct {
	Pipeline *submission.Service
	Gate     *analysis.Gate
	Storage  storage.Storage
	Hub      *push.Hub
}

func NewHandler(pipeline *submission.Service, gate *analysis.Gate, s storage.Storage, hub *push.Hub) *Handler {
	return &Handler{
		Pipeline: pipeline,
		Gate:     gate,
		Storage:  s,
		Hub:      hub,
	}
}
