// Package orders holds the order domain model, the demonstration data set and
// the lookup service used by the HTTP layer.
package orders
