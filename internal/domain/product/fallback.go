package product

import "github.com/shopspring/decimal"

// Fallback returns the built-in product list served when neither the remote
// API nor a stored copy is available. A fresh slice is returned on each call.
func Fallback() []Product {
	return []Product{
		New(1, "Laptop Empresarial Dell OptiPlex", decimal.RequireFromString("899.99"),
			"Laptop empresarial de alta gama con procesador Intel Core i7, 16GB RAM y SSD de 512GB. Ideal para profesionales y empresas.",
			"electronics", "https://images.pexels.com/photos/205421/pexels-photo-205421.jpeg",
			Rating{Rate: 4.5, Count: 120}),
		New(2, "Sistema de Videoconferencias HD", decimal.RequireFromString("1299.99"),
			"Sistema completo de videoconferencias con cámara 4K, micrófono direccional y altavoces de alta calidad.",
			"electronics", "https://images.pexels.com/photos/4226140/pexels-photo-4226140.jpeg",
			Rating{Rate: 4.8, Count: 89}),
		New(3, "Impresora Multifunción Láser", decimal.RequireFromString("299.99"),
			"Impresora láser multifunción con escáner, copiadora y conexión WiFi. Perfecta para oficinas pequeñas y medianas.",
			"electronics", "https://images.pexels.com/photos/4439901/pexels-photo-4439901.jpeg",
			Rating{Rate: 4.3, Count: 156}),
		New(4, "Software de Gestión Empresarial", decimal.RequireFromString("1999.99"),
			"Suite completa de software para gestión empresarial: CRM, ERP, contabilidad y recursos humanos.",
			"software", "https://images.pexels.com/photos/590020/pexels-photo-590020.jpeg",
			Rating{Rate: 4.7, Count: 78}),
		New(5, "Servicio de Consultoría IT", decimal.RequireFromString("150.00"),
			"Servicios profesionales de consultoría en tecnología de la información para optimizar sus procesos empresariales.",
			"services", "https://images.pexels.com/photos/3184465/pexels-photo-3184465.jpeg",
			Rating{Rate: 4.9, Count: 45}),
		New(6, "Router Empresarial Cisco", decimal.RequireFromString("549.99"),
			"Router empresarial de alta velocidad con múltiples puertos Ethernet y tecnología WiFi 6.",
			"electronics", "https://images.pexels.com/photos/4218883/pexels-photo-4218883.jpeg",
			Rating{Rate: 4.4, Count: 203}),
	}
}
