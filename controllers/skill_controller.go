// Copyright 2025 skillgate-dev.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package controllers

import (
	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"

	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/shared"
)

type SkillController struct {
	skillRepository shared.SkillRepository
}

func NewSkillController(skillRepository shared.SkillRepository) *SkillController {
	return &SkillController{skillRepository: skillRepository}
}

func (c *SkillController) Create(ctx shared.Context) error {
	type requestBody struct {
		Name        string `json:"name" validate:"required,min=1,max=200"`
		Description string `json:"description"`
	}

	var body requestBody
	if err := ctx.Bind(&body); err != nil {
		return err
	}
	if err := shared.V.Struct(body); err != nil {
		return echo.NewHTTPError(400, err.Error())
	}

	skill := models.Skill{
		Slug:        slug.Make(body.Name),
		Name:        body.Name,
		Description: body.Description,
	}

	if err := c.skillRepository.Create(nil, &skill); err != nil {
		return echo.NewHTTPError(500, "could not create skill").WithInternal(err)
	}

	return ctx.JSON(201, skill)
}

func (c *SkillController) List(ctx shared.Context) error {
	skills, err := c.skillRepository.All()
	if err != nil {
		return echo.NewHTTPError(500, "could not list skills").WithInternal(err)
	}
	return ctx.JSON(200, skills)
}

func (c *SkillController) Read(ctx shared.Context) error {
	return ctx.JSON(200, shared.GetSkill(ctx))
}
