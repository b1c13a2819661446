package handlers

import (
	"net/http"
	"strconv"

	"github.com/fintrackhq/ledger-backend/internal/models"
)

// Query param helpers. Absent params come back nil so the store layer can
// tell "not filtered" from "filtered to empty".

func queryString(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func queryTransactionType(r *http.Request, key string) *models.TransactionType {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	t := models.TransactionType(v)
	return &t
}

func queryDivision(r *http.Request, key string) *models.Division {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	d := models.Division(v)
	return &d
}
