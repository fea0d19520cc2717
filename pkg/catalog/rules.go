package catalog

// TagRule collects taxonomy terms from the table row whose header equals Label.
// Selector is evaluated inside the row's value cell.
type TagRule struct {
	Label    string
	Selector string
}

// Rules drives detail-page extraction. Keeping it as data lets each rule be
// tested on its own and lets a layout change be patched without new branches.
type Rules struct {
	// DescriptionRegions are concatenated in this order; missing ones are skipped.
	DescriptionRegions []string

	TagRules []TagRule

	// PreviewImageMeta is the page-level social preview image.
	PreviewImageMeta string
	// MainImageElements are tried in order when the preview meta is absent.
	MainImageElements []string
	// MainImageAttrs are tried in order on the matched element.
	MainImageAttrs []string

	SampleImageElements string
	SampleImageAttr     string
}

// DefaultRules matches the current DLsite work page layout.
var DefaultRules = Rules{
	DescriptionRegions: []string{
		`div#intro-title`,
		`div[itemprop="description"]`,
	},
	TagRules: []TagRule{
		{Label: "サークル名", Selector: "a"},
		{Label: "作者", Selector: "a"},
		{Label: "イラスト", Selector: "a"},
		{Label: "シナリオ", Selector: "a"},
		// the genre cell also carries unrelated links; only the main genre block counts
		{Label: "ジャンル", Selector: "div.main_genre a"},
	},
	PreviewImageMeta:    `meta[property="og:image"]`,
	MainImageElements:   []string{"div#work_image_main img", "img#main"},
	MainImageAttrs:      []string{"data-original", "src"},
	SampleImageElements: "div.product-slider-data div[data-src]",
	SampleImageAttr:     "data-src",
}
