package shared

import (
	"github.com/pkg/errors"
	"github.com/skillgate-dev/skillgate/database/models"
)

// the context middlewares resolve path params into these keys once, so the
// controllers never touch the database for lookups themselves.

func GetSkill(ctx Context) models.Skill {
	skill, ok := ctx.Get("skill").(models.Skill)
	if !ok {
		panic("skill not set in context")
	}
	return skill
}

func SetSkill(ctx Context, skill models.Skill) {
	ctx.Set("skill", skill)
}

func GetSkillVersion(ctx Context) models.SkillVersion {
	version, ok := ctx.Get("skillVersion").(models.SkillVersion)
	if !ok {
		panic("skill version not set in context")
	}
	return version
}

func SetSkillVersion(ctx Context, version models.SkillVersion) {
	ctx.Set("skillVersion", version)
}

// GetActor returns the acting identity the marketplace front end forwards in
// the X-Actor header. Session handling itself lives outside this service.
func GetActor(ctx Context) string {
	actor := ctx.Request().Header.Get("X-Actor")
	if actor == "" {
		return "anonymous"
	}
	return actor
}

func MaybeGetSkill(ctx Context) (models.Skill, error) {
	skill, ok := ctx.Get("skill").(models.Skill)
	if !ok {
		return models.Skill{}, errors.New("skill not set in context")
	}
	return skill, nil
}
