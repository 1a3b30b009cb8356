package components

// RenderBanner draws the small header shown above the progress view.
func RenderBanner(styles Styles) string {
	title := styles.Title.Render("rigup")
	sub := styles.Muted.Render("· VPS module installer")
	return "  " + title + " " + sub
}
