// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain stays free of ORM tags;
// each model converts with ToDomain and FromDomain.
//
// The postgres schema is owned by the embedded SQL migrations. AutoMigrate on
// these models is only used for sqlite (local development and tests).
package models
