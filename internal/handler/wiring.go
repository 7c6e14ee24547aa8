package handler

import (
	"smartfactory/internal/alert"
	"smartfactory/internal/storage"
	"smartfactory/internal/ws"
)

// Package-level collaborators set once from main before the server starts.
var (
	// SensorHub fans sensor readings out to connected websocket clients.
	SensorHub *ws.Hub

	// Alerts delivers threshold and maintenance notifications to the
	// configured webhook. Nil disables delivery.
	Alerts *alert.Notifier

	// Photos stores quality control photos. Nil disables photo upload.
	Photos *storage.Uploader
)
