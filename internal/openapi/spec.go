// Package openapi generates the OpenAPI 3.1 document describing the public
// and admin HTTP API. The document is built programmatically so it can never
// drift from the route table without a code change.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Spec builds the API document. baseURL is the externally visible server URL.
func Spec(version, baseURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Civicsite API",
			Description: "Backend API for the community leader website: site content, member registration, and events.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["sessionCookie"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "cookie",
			Name: "admin_token",
		},
	}

	registerSchemas(doc)

	doc.Paths = openapi3.NewPaths()
	addAuthPaths(doc)
	addSettingsPaths(doc)
	addContentPaths(doc)
	addMemberPaths(doc)
	addEventPaths(doc)

	// The document is built in memory rather than loaded from a file, so the
	// internal $ref strings must be resolved explicitly for Validate to see
	// their targets. All refs point at components registered above; a failure
	// here is a programming error surfaced by TestSpecValidates.
	_ = openapi3.NewLoader().ResolveRefsIn(doc, nil)

	return doc
}

func registerSchemas(doc *openapi3.T) {
	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
							"message": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
						},
					},
				},
			},
		},
	}

	doc.Components.Schemas["SiteSettings"] = objectSchema(openapi3.Schemas{
		"heroTitle": stringSchema(200),
		"heroImage": stringSchema(2048),
	})

	doc.Components.Schemas["Initiative"] = objectSchema(openapi3.Schemas{
		"title":       stringSchema(200),
		"description": stringSchema(500),
		"icon":        stringSchema(50),
	})

	doc.Components.Schemas["PageContent"] = objectSchema(openapi3.Schemas{
		"hero": objectSchema(openapi3.Schemas{
			"title":           stringSchema(200),
			"subtitle":        stringSchema(300),
			"ctaText":         stringSchema(100),
			"backgroundImage": stringSchema(2048),
		}),
		"about": objectSchema(openapi3.Schemas{
			"bio":         stringSchema(5000),
			"leaderImage": stringSchema(2048),
		}),
		"initiatives": arraySchema("#/components/schemas/Initiative"),
	})

	doc.Components.Schemas["MemberSummary"] = objectSchema(openapi3.Schemas{
		"id":       intSchema(),
		"name":     stringSchema(100),
		"area":     stringSchema(100),
		"joinedAt": dateTimeSchema(),
	})

	doc.Components.Schemas["Member"] = objectSchema(openapi3.Schemas{
		"id":       intSchema(),
		"name":     stringSchema(100),
		"area":     stringSchema(100),
		"joinedAt": dateTimeSchema(),
		"isPublic": boolSchema(),
	})

	doc.Components.Schemas["Event"] = objectSchema(openapi3.Schemas{
		"id":          intSchema(),
		"title":       stringSchema(150),
		"description": stringSchema(2000),
		"date":        dateTimeSchema(),
		"imageUrl":    stringSchema(2048),
		"createdAt":   dateTimeSchema(),
	})

	doc.Components.Schemas["Pagination"] = objectSchema(openapi3.Schemas{
		"total":       intSchema(),
		"page":        intSchema(),
		"pageSize":    intSchema(),
		"totalPages":  intSchema(),
		"hasNextPage": boolSchema(),
		"hasPrevPage": boolSchema(),
	})
}

func addAuthPaths(doc *openapi3.T) {
	login := &openapi3.Operation{
		Tags:        []string{"auth"},
		Summary:     "Admin login",
		Description: "Authenticate an admin and set the session cookie. Rate limited per client IP.",
		OperationID: "login",
		RequestBody: jsonRequestBody("Login credentials", objectSchema(openapi3.Schemas{
			"email":    stringSchema(320),
			"password": stringSchema(1024),
			"redirect": stringSchema(2048),
		})),
		Responses: messageResponses("200", "Logged in, session cookie set", "400", "401", "429"),
	}

	logout := &openapi3.Operation{
		Tags:        []string{"auth"},
		Summary:     "Admin logout",
		Description: "Expire the session cookie.",
		OperationID: "logout",
		Responses:   messageResponses("200", "Logged out"),
	}

	doc.Paths.Set("/api/auth/login", &openapi3.PathItem{Post: login})
	doc.Paths.Set("/api/auth/logout", &openapi3.PathItem{Post: logout})
}

func addSettingsPaths(doc *openapi3.T) {
	get := &openapi3.Operation{
		Tags:        []string{"settings"},
		Summary:     "Get site settings",
		OperationID: "get_settings",
		Responses:   refResponses("200", "Current settings", "#/components/schemas/SiteSettings"),
	}
	update := &openapi3.Operation{
		Tags:        []string{"settings"},
		Summary:     "Update site settings",
		Description: "Partial update. At least one of heroTitle or heroImage must be present.",
		OperationID: "update_settings",
		Security:    sessionSecurity(),
		RequestBody: jsonRequestBody("Fields to change", objectSchema(openapi3.Schemas{
			"heroTitle": stringSchema(200),
			"heroImage": stringSchema(2048),
		})),
		Responses: refResponses("200", "Updated settings", "#/components/schemas/SiteSettings", "400", "401"),
	}
	doc.Paths.Set("/api/settings", &openapi3.PathItem{Get: get, Put: update})
}

func addContentPaths(doc *openapi3.T) {
	get := &openapi3.Operation{
		Tags:        []string{"content"},
		Summary:     "Get landing page content",
		OperationID: "get_content",
		Responses:   refResponses("200", "Current page content", "#/components/schemas/PageContent"),
	}
	update := &openapi3.Operation{
		Tags:        []string{"content"},
		Summary:     "Update landing page content",
		Description: "Section-level partial update of hero, about, or initiatives. A present initiatives array replaces the whole list and must hold 1 to 12 items.",
		OperationID: "update_content",
		Security:    sessionSecurity(),
		RequestBody: jsonRequestBody("Sections to change", openapi3.NewSchemaRef("#/components/schemas/PageContent", nil)),
		Responses:   refResponses("200", "Updated page content", "#/components/schemas/PageContent", "400", "401"),
	}
	doc.Paths.Set("/api/content", &openapi3.PathItem{Get: get, Put: update})
}

func addMemberPaths(doc *openapi3.T) {
	pageParam := &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter("page").
			WithDescription("1-based page number.").
			WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}),
	}

	list := &openapi3.Operation{
		Tags:        []string{"members"},
		Summary:     "List public members",
		Description: "Publicly visible members, newest first, 12 per page.",
		OperationID: "list_members",
		Parameters:  openapi3.Parameters{pageParam},
		Responses: refResponses("200", "Page of members", "#/components/schemas/MemberSummary"),
	}
	create := &openapi3.Operation{
		Tags:        []string{"members"},
		Summary:     "Register a member",
		OperationID: "create_member",
		RequestBody: jsonRequestBody("Registration details", objectSchema(openapi3.Schemas{
			"name":  stringSchema(100),
			"phone": stringSchema(20),
			"area":  stringSchema(100),
		})),
		Responses: refResponses("201", "Member registered", "#/components/schemas/MemberSummary", "400"),
	}
	listAll := &openapi3.Operation{
		Tags:        []string{"members"},
		Summary:     "List all members",
		Description: "Every member including hidden ones, 20 per page.",
		OperationID: "list_all_members",
		Security:    sessionSecurity(),
		Parameters:  openapi3.Parameters{pageParam},
		Responses:   refResponses("200", "Page of members", "#/components/schemas/Member", "401"),
	}
	toggle := &openapi3.Operation{
		Tags:        []string{"members"},
		Summary:     "Set member visibility",
		Description: "Show or hide a member on the public listing. Without an explicit isPublic value the current state is flipped.",
		OperationID: "set_member_visibility",
		Security:    sessionSecurity(),
		Parameters:  openapi3.Parameters{idPathParam("Member ID")},
		RequestBody: jsonRequestBody("Desired visibility", objectSchema(openapi3.Schemas{
			"isPublic": boolSchema(),
		})),
		Responses: messageResponses("200", "Visibility changed", "400", "401", "404"),
	}

	doc.Paths.Set("/api/members", &openapi3.PathItem{Get: list, Post: create})
	doc.Paths.Set("/api/admin/members", &openapi3.PathItem{Get: listAll})
	doc.Paths.Set("/api/members/{id}/visibility", &openapi3.PathItem{Patch: toggle})
}

func addEventPaths(doc *openapi3.T) {
	list := &openapi3.Operation{
		Tags:        []string{"events"},
		Summary:     "List events",
		Description: "All events ordered by date ascending.",
		OperationID: "list_events",
		Responses:   refResponses("200", "All events", "#/components/schemas/Event"),
	}
	create := &openapi3.Operation{
		Tags:        []string{"events"},
		Summary:     "Create an event",
		OperationID: "create_event",
		Security:    sessionSecurity(),
		RequestBody: jsonRequestBody("Event details", objectSchema(openapi3.Schemas{
			"title":       stringSchema(150),
			"description": stringSchema(2000),
			"date":        dateTimeSchema(),
			"imageUrl":    stringSchema(2048),
		})),
		Responses: refResponses("201", "Created event", "#/components/schemas/Event", "400", "401"),
	}
	del := &openapi3.Operation{
		Tags:        []string{"events"},
		Summary:     "Delete an event",
		OperationID: "delete_event",
		Security:    sessionSecurity(),
		Parameters:  openapi3.Parameters{idPathParam("Event ID")},
		Responses:   messageResponses("200", "Event deleted", "400", "401", "404"),
	}

	doc.Paths.Set("/api/events", &openapi3.PathItem{Get: list, Post: create})
	doc.Paths.Set("/api/events/{id}", &openapi3.PathItem{Delete: del})
}

// ─── Schema Builders ────────────────────────────────────────────────────────

func objectSchema(props openapi3.Schemas) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		},
	}
}

func stringSchema(maxLength uint64) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:      &openapi3.Types{"string"},
			MaxLength: &maxLength,
		},
	}
}

func intSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}
}

func boolSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}
}

func dateTimeSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}}
}

func arraySchema(itemsRef string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: openapi3.NewSchemaRef(itemsRef, nil),
		},
	}
}

// ─── Operation Helpers ──────────────────────────────────────────────────────

func sessionSecurity() *openapi3.SecurityRequirements {
	reqs := openapi3.SecurityRequirements{{"sessionCookie": {}}}
	return &reqs
}

func idPathParam(description string) *openapi3.ParameterRef {
	p := openapi3.NewPathParameter("id").
		WithDescription(description).
		WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"})
	return &openapi3.ParameterRef{Value: p}
}

func jsonRequestBody(description string, schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    true,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// refResponses builds a success response referencing a component schema plus
// the standard error responses for the listed codes.
func refResponses(successCode, description, ref string, errorCodes ...string) *openapi3.Responses {
	responses := openapi3.NewResponses()
	desc := description
	responses.Set(successCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(openapi3.NewSchemaRef(ref, nil)),
		},
	})
	addErrorResponses(responses, errorCodes)
	return responses
}

// messageResponses builds a success response carrying only a message string.
func messageResponses(successCode, description string, errorCodes ...string) *openapi3.Responses {
	responses := openapi3.NewResponses()
	desc := description
	responses.Set(successCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content: openapi3.NewContentWithJSONSchemaRef(objectSchema(openapi3.Schemas{
				"message": stringSchema(500),
			})),
		},
	})
	addErrorResponses(responses, errorCodes)
	return responses
}

var errorDescriptions = map[string]string{
	"400": "Bad request",
	"401": "Unauthorized",
	"404": "Not found",
	"429": "Too many requests",
	"500": "Internal server error",
}

func addErrorResponses(responses *openapi3.Responses, codes []string) {
	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	for _, code := range append(codes, "500") {
		desc := errorDescriptions[code]
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}
}
