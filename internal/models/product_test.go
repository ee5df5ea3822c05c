package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bentswoodworking/bents-api/internal/models"
)

func TestSplitTagsTrimsEveryEntry(t *testing.T) {
	assert.Equal(t, []string{"Shop Tour", "Cabinet Build", "Track Saw"}, models.SplitTags(" Shop Tour ,Cabinet Build,  Track Saw"))
	assert.Equal(t, []string{""}, models.SplitTags(""))
}

func TestNewShopProductGroupTagsExcludeLast(t *testing.T) {
	p := models.NewShopProduct(models.Product{ID: "1", Title: "Clamp", Tags: "Workbench Build, Shop Tour, Clamp"})
	assert.Equal(t, []string{"Workbench Build", "Shop Tour"}, p.GroupTags)

	single := models.NewShopProduct(models.Product{ID: "2", Title: "Pencil", Tags: "Pencil"})
	assert.NotNil(t, single.GroupTags)
	assert.Empty(t, single.GroupTags)
}

func TestGroupByVideoPreservesOrder(t *testing.T) {
	products := models.NewShopProducts([]models.Product{
		{ID: "1", Tags: "A, B, one"},
		{ID: "2", Tags: "B, two"},
		{ID: "3", Tags: "three"},
	})

	grouped := models.GroupByVideo(products)

	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["A"], 1)
	if assert.Len(t, grouped["B"], 2) {
		assert.Equal(t, "1", grouped["B"][0].ID)
		assert.Equal(t, "2", grouped["B"][1].ID)
	}
}

func TestFilterProducts(t *testing.T) {
	products := models.NewShopProducts([]models.Product{
		{ID: "1", Title: "Festool Domino", Tags: "Floating Shelves, Domino"},
		{ID: "2", Title: "Glue Bottle", Tags: "Cutting Board, Glue"},
	})

	assert.Len(t, models.FilterProducts(products, ""), 2)
	assert.Len(t, models.FilterProducts(products, "DOMINO"), 1)
	assert.Equal(t, "2", models.FilterProducts(products, "cutting")[0].ID)
	assert.Empty(t, models.FilterProducts(products, "glue bottle x"))
}
