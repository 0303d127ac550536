package storage

const INSERT_READING_INTERNAL_DB = `
	INSERT INTO lectura (
		device_id,
		fecha,
		valor_crudo,
		voltaje,
		lux,
		lux_filtrado,
		nivel_ruido,
		snr,
		es_outlier,
		es_pico,
		pendiente_tendencia,
		confianza_tendencia,
		calidad
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
	)
`

const INSERT_READING_HISTORIAN_DB = `
	INSERT INTO dbo.LECTURA_LUZ (
		DeviceID, Fecha, ValorCrudo, Voltaje, Lux, LuxFiltrado,
		NivelRuido, SNR, EsOutlier, EsPico, Calidad
	) VALUES (
		@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11
	)
`
