package mcpserver

// DocumentFormatContract describes the Markdown dialect the renderer and
// exporters understand, for LLM consumers creating documents.
const DocumentFormatContract = `# Lesa Document Format Reference

Lesa renders GitHub Flavored Markdown with a few extensions. Documents
created through the MCP tools should stick to this dialect.

## Base syntax

- ATX headings (` + "`" + `# ` + "`" + ` through ` + "`" + `###### ` + "`" + `). The first H1 becomes the
  document title in listings and search.
- GFM tables, strikethrough, task lists, and autolinks.
- Fenced code blocks with a language tag get syntax highlighting:

` + "```" + `markdown
` + "```" + `go
fmt.Println("hello")
` + "```" + `
` + "```" + `

## Math

- Inline math between single dollars: ` + "`" + `$e^{i\pi}+1=0$` + "`" + ` (no newlines inside).
- Display math between double dollars:

` + "```" + `markdown
$$
\int_0^1 x^2\,dx
$$
` + "```" + `

Dollar signs inside code spans and code blocks are left alone.

## Alerts

GitHub-style alert blockquotes are rendered as styled callouts:

` + "```" + `markdown
> [!NOTE]
> Useful background information.
` + "```" + `

Supported kinds: NOTE, TIP, IMPORTANT, WARNING, CAUTION (case-insensitive).

## Images

- Regular image syntax works: ` + "`" + `![alt](https://example.com/pic.png)` + "`" + `.
- Workspace-relative images: ` + "`" + `![alt](local:img/pic.png)` + "`" + ` inlines the file
  from the workspace.
- Uploaded images (via the ` + "`" + `upload_image` + "`" + ` tool) are referenced by token:
  ` + "`" + `![alt](local:img_<token>)` + "`" + `. Paste the returned ` + "`" + `markdownImage` + "`" + ` snippet as-is.
- Supported formats: png, jpg, jpeg, gif, webp, svg, bmp, ico.

## Rules

1. **File paths** end with ` + "`" + `.md` + "`" + `, ` + "`" + `.markdown` + "`" + `, or ` + "`" + `.txt` + "`" + ` and use forward slashes.
2. **Encoding** is UTF-8 with a trailing newline.
3. **No raw HTML** unless necessary; prefer Markdown equivalents.
4. Exports to md, html, pdf, and docx are derived from this source, so
   nonstandard syntax may not survive the round trip.
`
