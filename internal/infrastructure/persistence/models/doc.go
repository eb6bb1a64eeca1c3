// Package models contains GORM persistence models that map to database tables.
// Domain types stay free of ORM tags; each model converts to and from its
// domain counterpart with ToDomain / FromDomain.
//
//   - base.go: common id, timestamp and version columns
//   - product.go: products, including the stock columns
//   - order.go: orders with line snapshots stored as JSON
//   - activity.go: the bounded activity log
package models
