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

package register

import (
	"github.com/google/wire"

	"github.com/lukasdietrich/courrier/internal/documents"
)

// WireSet is the set of register services.
var WireSet = wire.NewSet(
	OptionsFromViper,
	NewClock,
	NewAllocator,
	NewJournal,
	NewMailService,
	NewContactService,
	NewUserService,
	NewAuthenticator,
	NewActionService,
	NewStatsService,
	NewExportService,
	wire.Bind(new(BordereauRenderer), new(*documents.Bordereau)),
	wire.Bind(new(SpreadsheetWriter), new(*documents.Spreadsheet)),
)
