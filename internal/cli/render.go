package cli

import (
	"fmt"
	"io"
	"time"

	"shoppinglist-api/internal/models"

	"github.com/gosuri/uitable"
)

func renderLists(w io.Writer, lists []models.List) {
	if len(lists) == 0 {
		fmt.Fprintln(w, "No shopping lists")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "NAME", "ITEMS")
	for _, list := range lists {
		tbl.AddRow(list.ID, list.Name, list.ItemsCount)
	}
	fmt.Fprintln(w, tbl)
}

func renderItems(w io.Writer, items []models.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow("ID", "NAME", "QUANTITY", "UNIT")
	for _, item := range items {
		tbl.AddRow(item.ID, item.Name, item.Quantity, item.Unit)
	}
	fmt.Fprintln(w, tbl)
}

func renderHeader(w io.Writer, at time.Time) {
	fmt.Fprintf(w, "\n-- %s\n", at.Format("15:04:05"))
}
