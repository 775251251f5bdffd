// Package controllers implements the HTTP API of the ledger.
//
// All handlers operate on the local replica held by the coordinator. Writes
// return as soon as they are applied locally, their sync state is part of
// every resource representation.
package controllers

import (
	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/draft"
	"github.com/envelope-zero/ledger/pkg/rollover"
	"github.com/gin-gonic/gin"
)

// Controller holds the collaborators of the API handlers.
type Controller struct {
	Ledger   *coordinator.Coordinator
	Rollover *rollover.Service
	Drafts   *draft.Guard
}

// RegisterRoutes registers all resource routes with the RouterGroup that
// is passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	co.RegisterCategoryRoutes(r.Group("/categories"))
	co.RegisterEnvelopeRoutes(r.Group("/envelopes"))
	co.RegisterEnvelopeOrderRoutes(r.Group("/envelope-order"))
	co.RegisterTransactionRoutes(r.Group("/transactions"))
	co.RegisterSplitRoutes(r.Group("/splits"))
	co.RegisterTransferRoutes(r.Group("/transfers"))
	co.RegisterIncomeSourceRoutes(r.Group("/income-sources"))
	co.RegisterAllocationRoutes(r.Group("/allocations"))
	co.RegisterPaymentMethodRoutes(r.Group("/payment-methods"))
	co.RegisterMonthRoutes(r.Group("/months"))
	co.RegisterTombstoneRoutes(r.Group("/tombstones"))
	co.RegisterSyncRoutes(r.Group("/sync"))
	co.RegisterDraftRoutes(r.Group("/drafts"))
	co.RegisterExportRoutes(r.Group("/export"))
}
