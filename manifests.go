package churchsite

import (
	"fmt"
	"sort"

	"github.com/towngreen/churchsite/content"
)

func textField(section, key, label, def string, order int) content.FieldSpec {
	return content.FieldSpec{Section: section, Key: key, Label: label, Kind: content.KindText, Default: def, Order: order}
}

func longText(section, key, label, def string, order int) content.FieldSpec {
	f := textField(section, key, label, def, order)
	f.Multiline = true
	return f
}

func imageField(section, key, label string, order int) content.FieldSpec {
	return content.FieldSpec{Section: section, Key: key, Label: label, Kind: content.KindImage, Order: order}
}

func logoField(section, key, label string, order int) content.FieldSpec {
	f := imageField(section, key, label, order)
	f.SubDir = content.SubDirLogos
	return f
}

func listField(kind content.Kind, section, key, label string) content.FieldSpec {
	return content.FieldSpec{Section: section, Key: key, Label: label, Kind: kind}
}

// numbered declares n repeated title/description pairs such as program1_title.
func numbered(section, prefix, label string, titles, descs []string, order func(i int) int) []content.FieldSpec {
	var out []content.FieldSpec
	for i := range titles {
		n := i + 1
		out = append(out,
			textField(section, fmt.Sprintf("%s%d_title", prefix, n), fmt.Sprintf("%s %d - Title", label, n), titles[i], order(n)),
			longText(section, fmt.Sprintf("%s%d_description", prefix, n), fmt.Sprintf("%s %d - Description", label, n), descs[i], order(n)+1),
		)
	}
	return out
}

func stats(section string, numbers, labels []string, order func(i int) int) []content.FieldSpec {
	var out []content.FieldSpec
	for i := range numbers {
		n := i + 1
		out = append(out,
			textField(section, fmt.Sprintf("stat%d_number", n), fmt.Sprintf("Stat %d - Number", n), numbers[i], order(n)),
			textField(section, fmt.Sprintf("stat%d_label", n), fmt.Sprintf("Stat %d - Label", n), labels[i], order(n)+1),
		)
	}
	return out
}

const (
	aboutText1 = "Town Green Assembly is a vibrant community of believers dedicated to spreading the message of hope, love, and faith. We are committed to building strong relationships with God and each other, creating a welcoming environment for all who seek spiritual growth and fellowship."
	aboutText2 = "Our mission is to serve our community, nurture spiritual development, and make a positive impact in the lives of those around us. We believe in the power of prayer, the importance of community, and the transformative message of the Gospel."
	prayerText = "We believe in the power of prayer. Share your prayer requests with us, and our community will lift you up in prayer. Whether you're facing challenges, celebrating victories, or seeking guidance, we're here for you."

	defaultAddress      = "123 Church Street\nTown Green, ST 12345"
	defaultPhone        = "(555) 123-4567"
	defaultEmail        = "info@towngreenassembly.org"
	defaultServiceTimes = "Sunday: 9:00 AM & 11:00 AM\nWednesday: 7:00 PM"
)

// HomeManifest declares the home page and the site-wide logo fields.
var HomeManifest = content.Manifest{
	Name:  "home",
	Title: "Home Page",
	Groups: []content.Group{
		{Title: "Logo", Fields: []content.FieldSpec{
			logoField("site", "logo", "Main Logo", 1),
			logoField("site", "logo_footer", "Footer Logo (Optional)", 2),
			logoField("site", "favicon", "Favicon (Optional)", 3),
		}},
		{Title: "Church Gallery", Fields: []content.FieldSpec{
			textField("gallery", "title", "Section Title", "Church Gallery", 1),
			listField(content.KindGallery, "gallery", "items", "Gallery Items"),
		}},
		{Title: "Hero Section", Fields: []content.FieldSpec{
			listField(content.KindSlides, "hero", "background_images", "Background Images"),
			textField("hero", "title", "Hero Title", "Welcome to Town Green Assembly", 2),
			textField("hero", "subtitle", "Hero Subtitle", "A community of faith, hope, and love", 3),
			textField("hero", "button1_text", "Button 1 Text", "Learn More", 4),
			textField("hero", "button1_link", "Button 1 Link", "/about", 5),
			textField("hero", "button2_text", "Button 2 Text", "Get Involved", 6),
			textField("hero", "button2_link", "Button 2 Link", "/contact", 7),
		}},
		{Title: "About Section", Fields: append([]content.FieldSpec{
			textField("about", "title", "Section Title", "About Us", 1),
			longText("about", "text1", "About Text (Paragraph 1)", aboutText1, 2),
			longText("about", "text2", "About Text (Paragraph 2)", aboutText2, 3),
		}, stats("about",
			[]string{"500+", "15+", "20+"},
			[]string{"Members", "Years", "Programs"},
			func(n int) int { return n*2 + 2 })...)},
		{Title: "Programs Section", Fields: append([]content.FieldSpec{
			textField("programs", "title", "Section Title", "Church Programs", 1),
		}, numbered("programs", "program", "Program",
			[]string{"Sunday Service", "Bible Study", "Worship Night", "Children's Ministry", "Youth Group", "Community Outreach"},
			[]string{
				"Join us every Sunday for worship, prayer, and inspiring messages from the Word.",
				"Deep dive into Scripture with our weekly Bible study groups for all ages.",
				"Experience powerful worship and praise every Friday evening.",
				"Nurturing young hearts with age-appropriate lessons and activities.",
				"Engaging programs for teenagers to grow in faith and build friendships.",
				"Making a difference in our community through service and love.",
			},
			func(n int) int { return n*10 + 1 })...)},
		{Title: "Testimonies Section", Fields: append([]content.FieldSpec{
			textField("testimonies", "title", "Section Title", "Testimonies", 1),
		}, homeTestimonies()...)},
		{Title: "Prayer Section", Fields: []content.FieldSpec{
			textField("prayer", "title", "Section Title", "Prayer Requests", 1),
			longText("prayer", "description", "Prayer Description", prayerText, 2),
			textField("prayer", "button_text", "Button Text", "Submit Prayer Request", 3),
			textField("prayer", "button_link", "Button Link", "/prayers", 4),
			imageField("prayer", "image", "Prayer Section Image", 5),
		}},
		{Title: "Contact Section", Fields: []content.FieldSpec{
			textField("contact", "title", "Section Title", "Get In Touch", 1),
			longText("contact", "address", "Address", defaultAddress, 2),
			textField("contact", "phone", "Phone", defaultPhone, 3),
			textField("contact", "email", "Email", defaultEmail, 4),
			longText("contact", "service_times", "Service Times", defaultServiceTimes, 5),
		}},
	},
}

func homeTestimonies() []content.FieldSpec {
	quotes := []string{
		"Town Green Assembly has been a blessing in my life. The community here is warm, welcoming, and truly cares about each other.",
		"I found hope and purpose here. The messages are inspiring and the worship is powerful. This is truly a place where God moves.",
		"My family has grown so much spiritually since joining. The children's ministry is excellent and my kids love coming to church.",
	}
	authors := []string{"Sarah M.", "John D.", "Maria L."}
	var out []content.FieldSpec
	for i := range quotes {
		n := i + 1
		out = append(out,
			longText("testimonies", fmt.Sprintf("testimony%d_text", n), fmt.Sprintf("Testimony %d - Text", n), quotes[i], n*10+1),
			textField("testimonies", fmt.Sprintf("testimony%d_author", n), fmt.Sprintf("Testimony %d - Author", n), authors[i], n*10+2),
		)
	}
	return out
}

// AboutManifest declares the about page.
var AboutManifest = content.Manifest{
	Name:  "about",
	Title: "About Page",
	Groups: []content.Group{
		{Title: "Page Header", Fields: []content.FieldSpec{
			textField("about_page", "hero_title", "Page Title", "About Town Green Assembly", 1),
			textField("about_page", "hero_subtitle", "Page Subtitle", "Building a community of faith, hope, and love", 2),
		}},
		{Title: "Mission", Fields: []content.FieldSpec{
			textField("about_page", "mission_title", "Mission Title", "Our Mission", 3),
			longText("about_page", "mission_text1", "Mission Text (Paragraph 1)", aboutText1, 4),
			longText("about_page", "mission_text2", "Mission Text (Paragraph 2)", aboutText2, 5),
			imageField("about_page", "mission_image", "Mission Image", 6),
		}},
		{Title: "Values", Fields: append([]content.FieldSpec{
			textField("about_page", "values_title", "Values Section Title", "Our Values", 7),
		}, numbered("about_page", "value", "Value",
			[]string{"Love", "Service", "Community", "Truth"},
			[]string{
				"We believe in showing unconditional love to everyone, just as Christ loved us.",
				"We are called to serve our community and make a positive difference in the world.",
				"We foster genuine relationships and support one another in our faith journey.",
				"We are committed to teaching and living out the truth of God's Word.",
			},
			func(n int) int { return n*10 + 7 })...)},
		{Title: "History", Fields: []content.FieldSpec{
			textField("about_page", "history_title", "History Title", "Our History", 50),
			longText("about_page", "history_text1", "History Text (Paragraph 1)", "Founded over 15 years ago, Town Green Assembly began as a small group of believers who wanted to create a place where people could experience the love of God in a genuine and authentic way. What started as a humble gathering has grown into a thriving community of over 500 members.", 51),
			longText("about_page", "history_text2", "History Text (Paragraph 2)", "Throughout our journey, we have remained committed to our core values of love, service, community, and truth. We have seen countless lives transformed, families strengthened, and communities impacted through the power of the Gospel.", 52),
			longText("about_page", "history_text3", "History Text (Paragraph 3)", "Today, we continue to grow and expand our reach, always staying true to our mission of building a community where everyone can find hope, healing, and purpose in Christ.", 53),
		}},
		{Title: "Statistics", Fields: stats("about_page",
			[]string{"500+", "15+", "20+", "50+"},
			[]string{"Active Members", "Years of Service", "Ministry Programs", "Community Events"},
			func(n int) int { return n*10 + 60 })},
	},
}

// GivingManifest declares the giving page. The step 2 texts are templates
// in which {type} is replaced by the chosen giving type.
var GivingManifest = content.Manifest{
	Name:  "giving",
	Title: "Giving Page",
	Groups: []content.Group{
		{Title: "Page Header", Fields: []content.FieldSpec{
			textField("giving_page", "hero_title", "Page Title", "Giving", 1),
			textField("giving_page", "hero_subtitle", "Page Subtitle", "Support the ministry and make a difference", 2),
		}},
		{Title: "Step 1", Fields: append([]content.FieldSpec{
			textField("giving_page", "step1_title", "Step 1 Title", "Select Giving Type", 3),
			textField("giving_page", "step1_subtitle", "Step 1 Subtitle", "Choose how you would like to give", 4),
		}, givingTypes()...)},
		{Title: "Step 2", Fields: []content.FieldSpec{
			textField("giving_page", "step2_title", "Step 2 Title", "Payment Information", 40),
			textField("giving_page", "step2_subtitle_template", "Step 2 Subtitle Template", "Send your {type} to the number below", 41),
			textField("giving_page", "momo_number", "Mobile Money Number", "0244123456", 42),
			longText("giving_page", "momo_note_template", "Mobile Money Note Template", "Please use this number when sending your {type}. Include your name as reference.", 43),
		}},
		{Title: "Thank You", Fields: []content.FieldSpec{
			textField("giving_page", "thank_you_title", "Thank You Title", "Thank You for Your Generosity", 50),
			longText("giving_page", "thank_you_message", "Thank You Message", "Your giving helps us continue our mission of spreading the Gospel, supporting our community, and making a positive impact in the lives of many. We appreciate your faithfulness and generosity.", 51),
		}},
	},
}

const givingTypeCount = 3

func givingTypes() []content.FieldSpec {
	names := []string{"Tithe", "Offering", "Help"}
	descs := []string{
		"Give your tithe as commanded in Malachi 3:10",
		"Give a freewill offering to support the ministry",
		"Support special projects and community outreach",
	}
	var out []content.FieldSpec
	for i := range names {
		n := i + 1
		out = append(out,
			textField("giving_page", fmt.Sprintf("giving_type%d_name", n), fmt.Sprintf("Type %d - Name", n), names[i], n*10+10),
			longText("giving_page", fmt.Sprintf("giving_type%d_description", n), fmt.Sprintf("Type %d - Description", n), descs[i], n*10+11),
		)
	}
	return out
}

// TestimoniesManifest declares the testimonies page.
var TestimoniesManifest = content.Manifest{
	Name:  "testimonies",
	Title: "Testimonies Page",
	Groups: []content.Group{
		{Title: "Page Header", Fields: []content.FieldSpec{
			textField("testimonies_page", "title", "Page Title", "Testimonies", 1),
			textField("testimonies_page", "subtitle", "Page Subtitle", "Stories of transformation and hope", 2),
		}},
		{Title: "Call to Action", Fields: []content.FieldSpec{
			textField("testimonies_page", "cta_title", "CTA Title", "Share Your Story", 10),
			longText("testimonies_page", "cta_description", "CTA Description", "Have a testimony to share? We'd love to hear how God has worked in your life!", 11),
			textField("testimonies_page", "cta_button_text", "CTA Button Text", "Share Your Testimony", 12),
			textField("testimonies_page", "cta_button_link", "CTA Button Link", "/contact", 13),
		}},
		{Title: "Testimonies", Fields: []content.FieldSpec{
			listField(content.KindTestimonies, "testimonies_page", "testimonies_list", "Testimonies"),
		}},
	},
}

// PrayersManifest declares the prayer requests page.
var PrayersManifest = content.Manifest{
	Name:  "prayers",
	Title: "Prayers Page",
	Groups: []content.Group{
		{Title: "Page Header", Fields: []content.FieldSpec{
			textField("prayers_page", "hero_title", "Page Title", "Prayer Requests", 1),
			textField("prayers_page", "hero_subtitle", "Page Subtitle", "We believe in the power of prayer", 2),
		}},
		{Title: "Introduction", Fields: []content.FieldSpec{
			textField("prayers_page", "intro_title", "Intro Title", "Share Your Prayer Request", 3),
			longText("prayers_page", "intro_text1", "Intro Text (Paragraph 1)", prayerText, 4),
			longText("prayers_page", "intro_text2", "Intro Text (Paragraph 2)", "Your prayer requests are confidential and will be shared with our prayer team. You can choose to remain anonymous if you prefer.", 5),
		}},
		{Title: "Success Message", Fields: []content.FieldSpec{
			textField("prayers_page", "success_title", "Success Title", "Thank You!", 6),
			longText("prayers_page", "success_message", "Success Message", "Your prayer request has been submitted. Our prayer team will be lifting you up.", 7),
		}},
		{Title: "Info Cards", Fields: numberedCards()},
	},
}

func numberedCards() []content.FieldSpec {
	return numbered("prayers_page", "info_card", "Card",
		[]string{"Prayer Team", "Confidential", "Response"},
		[]string{
			"Our dedicated prayer team prays over every request submitted.",
			"All prayer requests are kept confidential and handled with care.",
			"We'll follow up with you and keep you in our prayers.",
		},
		func(n int) int { return n*10 + 10 })
}

// ContactManifest declares the contact page.
var ContactManifest = content.Manifest{
	Name:  "contact",
	Title: "Contact Page",
	Groups: []content.Group{
		{Title: "Page Header", Fields: []content.FieldSpec{
			textField("contact_page", "hero_title", "Page Title", "Get In Touch", 1),
			textField("contact_page", "hero_subtitle", "Page Subtitle", "We'd love to hear from you", 2),
		}},
		{Title: "Contact Information", Fields: []content.FieldSpec{
			textField("contact_page", "info_title", "Info Section Title", "Contact Information", 3),
			longText("contact_page", "info_description", "Info Section Description", "Feel free to reach out to us through any of the following ways:", 4),
			longText("contact_page", "address", "Address", defaultAddress, 5),
			textField("contact_page", "phone", "Phone", defaultPhone, 6),
			textField("contact_page", "email", "Email", defaultEmail, 7),
			longText("contact_page", "service_times", "Service Times", defaultServiceTimes, 8),
		}},
		{Title: "Contact Form", Fields: []content.FieldSpec{
			textField("contact_page", "form_title", "Form Title", "Send Us a Message", 9),
			textField("contact_page", "success_title", "Success Title", "Message Sent!", 10),
			longText("contact_page", "success_message", "Success Message", "Thank you for contacting us. We'll get back to you soon.", 11),
		}},
	},
}

// Manifests are the content editors, keyed by name.
var Manifests = map[string]content.Manifest{
	HomeManifest.Name:        HomeManifest,
	AboutManifest.Name:       AboutManifest,
	GivingManifest.Name:      GivingManifest,
	TestimoniesManifest.Name: TestimoniesManifest,
	PrayersManifest.Name:     PrayersManifest,
	ContactManifest.Name:     ContactManifest,
}

// editorOrder is the order editors appear in the admin dashboard.
var editorOrder = []string{"home", "about", "giving", "testimonies", "prayers", "contact"}

// Editors returns every manifest in dashboard order.
func Editors() []content.Manifest {
	out := make([]content.Manifest, 0, len(editorOrder))
	for _, name := range editorOrder {
		out = append(out, Manifests[name])
	}
	return out
}

// ValidateManifests checks every declared manifest.
func ValidateManifests() error {
	names := make([]string, 0, len(Manifests))
	for name := range Manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := Manifests[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}
