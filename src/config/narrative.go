package config

// 默认页面文案，与原始数据分析报告一致
const defaultTitle = "Dashboard Insight Penyewaan Sepeda (2011-2012)"

var defaultSections = []Section{
	{
		Heading: "Tren Pengguna Baru vs. Kasual",
		Insight: "- Jumlah pengguna baru lebih tinggi dibandingkan pengguna casual di kedua tahun\n" +
			"- Tren tertinggi penyewaan sepeda terjadi pada pengguna baru di tahun 2012, yaitu 1.304.046 lebih banyak dari pengguna casual",
	},
	{
		Heading: "Pola Penyewaan Sepeda tiap Jam",
		Insight: "- Jumlah penyewaan pada tahun 2012 meningkat signifikan dari tahun sebelumnya\n" +
			"- Jam tengah malam hingga subuh (00.00 - 05.00) memiliki penyewaan paling rendah\n" +
			"- Terjadi lonjakan penyewaan yang signifikan pada pagi (06:00 - 08:00) dan sore (16:00 - 17:00)\n" +
			"- Penyewaan sepeda terbanyak terjadi pada jam 17.00 sedangkan terendah terjadi pada jam 04.00",
	},
	{
		Heading: "Total Penyewaan Sepeda Berdasarkan Musim",
		Insight: "- Jumlah penyewaan pada tahun 2012 mengalami kenaikan yang signifikan dibanding tahun sebelumnya\n" +
			"- Jumlah penyewaan yang tinggi terjadi di musim gugur dan panas, pada musim ini kondisi cuaca mendukung aktivitas luar ruangan\n" +
			"- Pada musim dingin, tidak lebih tinggi dari musim gugur dan panas\n" +
			"- Jumlah penyewaan cukup rendah pada musim semi karena cuaca yang tidak menentu",
	},
}

var defaultSummary = Section{
	Heading: "Kesimpulan",
	Insight: "- Pengguna baru lebih banyak dibandingkan pengguna casual, dengan peningkatan signifikan pada tahun 2012.\n" +
		"- Penyewaan sepeda meningkat di pagi (06:00 - 08:00) dan sore (16:00 - 17:00), dengan puncak pada pukul 17:00.\n" +
		"- Musim gugur dan panas menjadi periode dengan jumlah penyewaan tertinggi, sedangkan musim semi lebih rendah karena cuaca yang tidak menentu.",
}

// SectionCount 页面上图表区块的数量
const SectionCount = 3

func (n *Narrative) applyDefaults() {
	if n.Title == "" {
		n.Title = defaultTitle
	}
	for len(n.Sections) < SectionCount {
		n.Sections = append(n.Sections, defaultSections[len(n.Sections)])
	}
	for i := range n.Sections[:SectionCount] {
		if n.Sections[i].Heading == "" {
			n.Sections[i].Heading = defaultSections[i].Heading
		}
	}
	if n.Summary.Heading == "" && n.Summary.Insight == "" {
		n.Summary = defaultSummary
	}
}
