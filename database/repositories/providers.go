// Copyright (C) 2025 skillgate-dev
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package repositories

import (
	"github.com/skillgate-dev/skillgate/shared"
	"go.uber.org/fx"
)

// Module provides all repository constructors as their interfaces
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewSkillRepository, fx.As(new(shared.SkillRepository)))),
	fx.Provide(fx.Annotate(NewSkillVersionRepository, fx.As(new(shared.SkillVersionRepository)))),
	fx.Provide(fx.Annotate(NewSecurityReportRepository, fx.As(new(shared.SecurityReportRepository)))),
	fx.Provide(fx.Annotate(NewAISecurityReportRepository, fx.As(new(shared.AISecurityReportRepository)))),
	fx.Provide(fx.Annotate(NewEvalJobRepository, fx.As(new(shared.EvalJobRepository)))),
	fx.Provide(fx.Annotate(NewEvalResultRepository, fx.As(new(shared.EvalResultRepository)))),
	fx.Provide(fx.Annotate(NewAuditEventRepository, fx.As(new(shared.AuditEventRepository)))),
)
