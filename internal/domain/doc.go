// Package domain contains the core business entities and validation
// rules of the application. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
