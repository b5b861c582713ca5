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

package dtos

type ContentType string

const (
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeScript   ContentType = "script"
	ContentTypeOther    ContentType = "other"
)

// PackageFile is one file of a skill package as handed over by the
// structural parser. Content is the raw file content; binary files carry
// their bytes verbatim and are skipped by the scanner.
type PackageFile struct {
	Path        string      `json:"path" validate:"required"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"contentType"`
}
