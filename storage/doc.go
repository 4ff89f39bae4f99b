// Package storage defines the persistence contracts for the realworld
// blogging platform.
//
// This package decouples the rest of the system from the concrete storage
// backend. Two interchangeable backends implement every contract: a
// document store (storage/badger) and a relational store
// (storage/postgres). Callers depend only on the interfaces here and on
// the ArticleRepository facade in particular; the active backend is chosen
// once at process start and never branched on afterwards.
//
// # Backend Constructors
//
// Constructors in the backend packages return concrete repository types;
// consumers hold them through the interfaces here, so backends stay
// swappable and tests can substitute doubles without modification.
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use. No
// in-process coordination is assumed beyond the backing store's own
// concurrency control; multi-step read operations may observe concurrent
// writes between round-trips.
//
// # Context Support
//
// All repository methods accept context.Context. The relational backend
// propagates it to the database; the embedded document store performs
// bounded local transactions and does not block on it.
package storage
