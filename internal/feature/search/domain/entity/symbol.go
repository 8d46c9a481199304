// Package entity defines the domain models for the search feature.
package entity

import "time"

// Symbol represents one entry of the local symbol index.
// It contains the ticker code, company name, listing exchange and display ordering.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Exchange  string    `gorm:"size:100;not null"`
	Type      string    `gorm:"size:20;not null;default:EQUITY"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ToResult converts an index entry into a search result.
func (s Symbol) ToResult() SearchResult {
	return SearchResult{Symbol: s.Code, Name: s.Name, Exchange: s.Exchange, Type: s.Type}
}
