package home

// PageTitle is the document title of the widget page.
const PageTitle = "QR Code"
