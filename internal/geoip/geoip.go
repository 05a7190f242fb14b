// Package geoip resolves IP addresses to the country they are registered in,
// using a MaxMind GeoIP2 or GeoLite2 database.
package geoip

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

var ErrInvalidAddress = errors.New("invalid IP address")

// Locator resolves an IP address to an ISO 3166-1 country code. An empty code
// means the address is not in any country, such as a private address.
type Locator interface {
	Country(address string) (string, error)
}

// Reader is a Locator backed by a GeoIP2 database file.
type Reader struct {
	db *geoip2.Reader
}

// Open opens the GeoIP2 database at path.
func Open(path string) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database %q: %w", path, err)
	}
	return &Reader{db: db}, nil
}

// Country implements Locator.
func (r *Reader) Country(address string) (string, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	record, err := r.db.Country(ip)
	if err != nil {
		return "", fmt.Errorf("GeoIP lookup of %s failed: %w", address, err)
	}
	return record.Country.IsoCode, nil
}

// Close releases the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Describe returns address followed by its country in parentheses, or just
// address if the country is unknown or l is nil.
func Describe(l Locator, address string) string {
	if l == nil {
		return address
	}
	country, err := l.Country(address)
	if err != nil || country == "" {
		return address
	}
	return address + " (" + country + ")"
}
