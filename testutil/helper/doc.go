// Package helper provides fixtures and observability spies for tests.
package helper
