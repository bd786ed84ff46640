/*
Package validation provides the default rule validator.

Rules are pipe-separated expressions keyed by attribute name, e.g.

	{"title": "required|max:255", "email": "email", "priority": "in:low,high"}

Each expression is translated to a github.com/go-playground/validator tag and checked
against the attribute value. Absent, nil or empty attributes only fail on "required";
every other rule is skipped for them.

Supported rules: required, nullable, string, email, url, uuid, numeric, alpha,
alpha_num, min:n, max:n, size:n, in:a,b,...
*/
package validation
