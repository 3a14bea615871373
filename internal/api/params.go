// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrNotFound
	}

	return id, nil
}

func directionParam(c echo.Context) (models.Direction, error) {
	direction := models.Direction(c.Param("direction"))
	if !direction.Valid() {
		return "", apperrors.ErrNotFound
	}

	return direction, nil
}

// mailParams combines the direction and id path parameters of mail routes.
func mailParams(c echo.Context) (models.Direction, int64, error) {
	direction, err := directionParam(c)
	if err != nil {
		return "", 0, err
	}

	id, err := idParam(c, "id")
	return direction, id, err
}

func dateQuery(name string, dest *models.NullDate) func([]string) []error {
	return func(values []string) []error {
		date, err := models.ParseDate(values[0])
		if err != nil {
			return []error{apperrors.Validation(name, "must be a date formatted as yyyy-mm-dd")}
		}

		*dest = models.SomeDate(date)
		return nil
	}
}

func idQuery(name string, dest **int64) func([]string) []error {
	return func(values []string) []error {
		id, err := strconv.ParseInt(values[0], 10, 64)
		if err != nil {
			return []error{apperrors.Validation(name, "must be an id")}
		}

		*dest = &id
		return nil
	}
}

func pageLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}

func bindMailFilter(c echo.Context) (database.MailFilter, error) {
	var (
		filter   database.MailFilter
		statuses []string
		priority string
		category string
	)

	err := echo.QueryParamsBinder(c).
		Strings("status", &statuses).
		String("priority", &priority).
		String("category", &category).
		CustomFunc("counterparty", idQuery("counterparty", &filter.CounterpartyID)).
		CustomFunc("dueFrom", dateQuery("dueFrom", &filter.DueFrom)).
		CustomFunc("dueTo", dateQuery("dueTo", &filter.DueTo)).
		CustomFunc("dateFrom", dateQuery("dateFrom", &filter.DateFrom)).
		CustomFunc("dateTo", dateQuery("dateTo", &filter.DateTo)).
		String("q", &filter.Search).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()
	if err != nil {
		return filter, err
	}

	for _, status := range statuses {
		filter.Statuses = append(filter.Statuses, models.MailStatus(status))
	}

	filter.Priority = models.Priority(priority)
	filter.Category = models.Category(category)

	return filter, nil
}

func bindActivityFilter(c echo.Context) (database.ActivityFilter, error) {
	var filter database.ActivityFilter

	err := echo.QueryParamsBinder(c).
		CustomFunc("user", idQuery("user", &filter.UserID)).
		String("action", &filter.Action).
		Int64("since", &filter.Since).
		Int64("until", &filter.Until).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()

	return filter, err
}
