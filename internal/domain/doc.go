// Package domain models the wildfire, air-quality and vegetation tables behind
// the dashboard and the pure transforms that turn them into chart-ready data.
//
// # Data Sources
//
// All inputs are pre-computed CSV files produced offline from public Spanish
// datasets. They are read once by the table store and treated as read-only:
//
//	incendios.csv                 one row per fire: comunidad, anio, perdidassuperficiales, mesdeteccion
//	merged_data.csv               fires joined with NDVI per region/year: comunidad_y, anio, count, total, ndvi_mean
//	NDVI_mensual.csv              mean NDVI per calendar month: mesdeteccion, NDVI
//	NDVI_previo_incendios.csv     NDVI before each fire: fortnight, anio, provincia, NDVI_previo, perdidassuperficiales
//	dias_incendio_andalucia.csv   Andalusian fire days: fecha, perdidassuperficiales (anio derived from fecha)
//	df_ica_diario.csv             daily air-quality index: anio, label, Incendio
//	bandas_contaminantes.csv      threshold bands: contaminante, label, min, max, color
//	o3.csv, so2.csv, no2.csv,     daily pollutant means: FECHA, AÑO, VALOR_MEDIO
//	pm25.csv, pm10.csv
//
// # Conventions
//
// Area lost ("perdidassuperficiales") is in hectares. A fire is serious when it
// burned more than 500 ha, see [SeriousFireHectares].
//
// Months are Spanish lowercase names and air-quality labels are the six
// official ICA levels. Both are ordered through an explicit [CategoryOrder]
// rank table rather than lexical order.
//
// # Tables
//
// A [Table] is an immutable snapshot: an ordered column list plus ordered
// rows of typed [Value] cells. Every transform in this package returns a new
// table and leaves its inputs untouched, so tables loaded once can be shared
// across concurrent renders without locking.
package domain
