package models

import (
	"strings"
	"time"
)

const (
	SortDefault = "default"
	SortVideo   = "video"
)

// Product is a row of the products table. Tags is the raw comma separated
// list: the last entry names the product itself, the others name videos.
type Product struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Tags      string    `json:"tags"`
	Link      string    `json:"link"`
	ImageURL  string    `json:"image_url"`
	ImageData []byte    `json:"image_data"`
	CreatedAt time.Time `json:"created_at"`
}

// ShopProduct is the shop-facing projection of a Product. ImageData is
// serialised as base64 by encoding/json.
type ShopProduct struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	Link      string   `json:"link"`
	ImageData []byte   `json:"image_data"`
	GroupTags []string `json:"groupTags"`
}

// SplitTags splits a raw tag list on commas and trims every entry.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tags = append(tags, strings.TrimSpace(part))
	}
	return tags
}

func NewShopProduct(p Product) ShopProduct {
	tags := SplitTags(p.Tags)
	group := make([]string, 0, len(tags))
	if len(tags) > 1 {
		group = append(group, tags[:len(tags)-1]...)
	}

	return ShopProduct{
		ID:        p.ID,
		Title:     p.Title,
		Tags:      tags,
		Link:      p.Link,
		ImageData: p.ImageData,
		GroupTags: group,
	}
}

func NewShopProducts(products []Product) []ShopProduct {
	result := make([]ShopProduct, 0, len(products))
	for _, p := range products {
		result = append(result, NewShopProduct(p))
	}
	return result
}

// GroupByVideo indexes products under each of their group tags. A product
// appears once per group tag; input order is preserved inside a group.
func GroupByVideo(products []ShopProduct) map[string][]ShopProduct {
	grouped := make(map[string][]ShopProduct)
	for _, p := range products {
		for _, tag := range p.GroupTags {
			grouped[tag] = append(grouped[tag], p)
		}
	}
	return grouped
}

// FilterProducts keeps products whose title or a group tag contains term,
// ignoring case. An empty term keeps everything.
func FilterProducts(products []ShopProduct, term string) []ShopProduct {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return products
	}

	result := make([]ShopProduct, 0, len(products))
	for _, p := range products {
		if matchesProduct(p, needle) {
			result = append(result, p)
		}
	}
	return result
}

func matchesProduct(p ShopProduct, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	for _, tag := range p.GroupTags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
